package service

import (
	"strconv"
	"strings"
	"time"

	"telescrape/internal/core/tabular"
	"telescrape/internal/core/textnorm"
	perr "telescrape/internal/platform/errors"
	"telescrape/internal/services/clean/domain"
)

// intermediate column names produced by Normalize on top of the raw header
const (
	colTitle    = "Channel Title"
	colUsername = "Channel Username"
	colID       = "ID"
	colMessage  = "Message"
	colDate     = "Date"
	colMedia    = "Media Path"
	colEmoji    = "Emoji Used"
	colLinks    = "YouTube Links"
)

// canonicalOrder maps intermediate columns to the storage schema
var canonicalOrder = []struct{ from, to string }{
	{colTitle, "channel_title"},
	{colUsername, "channel_username"},
	{colID, "message_id"},
	{colMessage, "message"},
	{colDate, "message_date"},
	{colMedia, "media_path"},
	{colEmoji, "emoji_used"},
	{colLinks, "youtube_links"},
}

// rawDateLayouts covers RFC3339 (our writer) and the legacy space-separated form
var rawDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05+00:00",
}

// parseRawDate tries each known layout
func parseRawDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range rawDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, perr.TimestampParsef("parse %q: %v", s, lastErr)
}

// Normalize applies the per-row policy to a merged raw table and returns a
// fresh table carrying the derived emoji and link columns. Rows with
// unparseable dates are kept with a blanked date; the count of those is
// returned so the caller can log them at the stage boundary
func Normalize(t tabular.Table) (tabular.Table, int) {
	idx := func(name string) int { return t.ColumnIndex(name) }
	iTitle, iUser, iID := idx(colTitle), idx(colUsername), idx(colID)
	iMsg, iDate, iMedia := idx(colMessage), idx(colDate), idx(colMedia)

	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	out := tabular.Table{
		Header: []string{colTitle, colUsername, colID, colMessage, colDate, colMedia, colEmoji, colLinks},
		Rows:   make([][]string, 0, len(t.Rows)),
	}

	dateErrors := 0
	for _, row := range t.Rows {
		text := textnorm.NFC(strings.TrimSpace(cell(row, iMsg)))

		emoji := textnorm.ExtractEmojis(text)
		links := textnorm.ExtractYouTubeLinks(text)
		text = textnorm.CleanText(text)
		if text == "" {
			text = textnorm.NoMessage
		}

		id := strings.TrimSpace(cell(row, iID))
		if id == "" {
			id = "0"
		} else if _, err := strconv.ParseInt(id, 10, 64); err != nil {
			id = "0"
		}

		date := strings.TrimSpace(cell(row, iDate))
		if date != "" {
			if _, err := parseRawDate(date); err != nil {
				dateErrors++
				date = ""
			}
		}

		media := strings.TrimSpace(cell(row, iMedia))
		if media == "" {
			media = textnorm.NoMedia
		}

		out.Rows = append(out.Rows, []string{
			strings.TrimSpace(cell(row, iTitle)),
			strings.TrimSpace(cell(row, iUser)),
			id,
			text,
			date,
			media,
			emoji,
			links,
		})
	}
	return out, dateErrors
}

// MapCanonical renames the intermediate columns to the storage schema and
// converts rows to typed records. A missing intermediate column is a
// SchemaMismatch: a programming error that aborts the run
func MapCanonical(t tabular.Table) ([]domain.MessageRow, error) {
	idx := make(map[string]int, len(canonicalOrder))
	for _, c := range canonicalOrder {
		i := t.ColumnIndex(c.from)
		if i < 0 {
			return nil, perr.SchemaMismatchf("missing column %q", c.from)
		}
		idx[c.to] = i
	}

	rows := make([]domain.MessageRow, 0, len(t.Rows))
	for _, row := range t.Rows {
		id, _ := strconv.ParseInt(row[idx["message_id"]], 10, 64)

		var when *time.Time
		if s := row[idx["message_date"]]; s != "" {
			if ts, err := parseRawDate(s); err == nil {
				utc := ts.UTC()
				when = &utc
			}
		}

		rows = append(rows, domain.MessageRow{
			ChannelTitle:    row[idx["channel_title"]],
			ChannelUsername: row[idx["channel_username"]],
			MessageID:       id,
			Message:         row[idx["message"]],
			MessageDate:     when,
			MediaPath:       row[idx["media_path"]],
			EmojiUsed:       row[idx["emoji_used"]],
			YouTubeLinks:    row[idx["youtube_links"]],
		})
	}
	return rows, nil
}
