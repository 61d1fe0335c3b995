// Package repo provides postgres access for the messages api
package repo

import (
	"context"
	"time"

	"telescrape/internal/modkit/repokit"
	perr "telescrape/internal/platform/errors"
)

// Row represents a message row from the database
type Row struct {
	ID              int64
	ChannelTitle    string
	ChannelUsername string
	MessageID       int64
	Message         string
	MessageDate     *time.Time
	MediaPath       string
	EmojiUsed       string
	YouTubeLinks    string
}

// Fields carries the writable columns of a message row
type Fields struct {
	ChannelTitle    string
	ChannelUsername string
	MessageID       int64
	Message         string
	MessageDate     *time.Time
	MediaPath       string
	EmojiUsed       string
	YouTubeLinks    string
}

// Repo defines the repository contract for the messages api
type Repo interface {
	Create(ctx context.Context, f Fields) (Row, error)
	GetByMessageID(ctx context.Context, messageID int64) (Row, error)
	List(ctx context.Context, skip, limit int) ([]Row, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, messageID int64, f Fields) (Row, error)
	Delete(ctx context.Context, messageID int64) (Row, error)
}

type (
	// PG implements the Repo interface using Postgres
	PG struct{}

	// queries holds the database query methods
	queries struct{ q repokit.Queryer }
)

// NewPG creates a new Postgres repository binder
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind binds a Postgres queryer to the Repo implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const messageColumns = `
	id, channel_title, channel_username, message_id, message,
	message_date, media_path, emoji_used, youtube_links
`

func scanRow(r repokit.Row) (Row, error) {
	var out Row
	err := r.Scan(
		&out.ID,
		&out.ChannelTitle,
		&out.ChannelUsername,
		&out.MessageID,
		&out.Message,
		&out.MessageDate,
		&out.MediaPath,
		&out.EmojiUsed,
		&out.YouTubeLinks,
	)
	return out, err
}

func (r *queries) Create(ctx context.Context, f Fields) (Row, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO telegram_messages (
			channel_title, channel_username, message_id, message,
			message_date, media_path, emoji_used, youtube_links
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+messageColumns,
		f.ChannelTitle, f.ChannelUsername, f.MessageID, f.Message,
		f.MessageDate, f.MediaPath, f.EmojiUsed, f.YouTubeLinks,
	)
	out, err := scanRow(row)
	if err != nil {
		return Row{}, perr.FromPostgres(err, "create message")
	}
	return out, nil
}

func (r *queries) GetByMessageID(ctx context.Context, messageID int64) (Row, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM telegram_messages WHERE message_id = $1`,
		messageID,
	)
	out, err := scanRow(row)
	if err != nil {
		if perr.IsNoRows(err) {
			return Row{}, perr.NotFoundf("message %d not found", messageID)
		}
		return Row{}, perr.FromPostgres(err, "get message")
	}
	return out, nil
}

func (r *queries) List(ctx context.Context, skip, limit int) ([]Row, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+messageColumns+` FROM telegram_messages ORDER BY id OFFSET $1 LIMIT $2`,
		skip, limit,
	)
	if err != nil {
		return nil, perr.FromPostgres(err, "list messages")
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		rr, err := scanRow(rows)
		if err != nil {
			return nil, perr.FromPostgres(err, "scan message")
		}
		out = append(out, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgres(err, "list messages")
	}
	return out, nil
}

func (r *queries) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM telegram_messages`).Scan(&n); err != nil {
		return 0, perr.FromPostgres(err, "count messages")
	}
	return n, nil
}

func (r *queries) Update(ctx context.Context, messageID int64, f Fields) (Row, error) {
	row := r.q.QueryRow(ctx, `
		UPDATE telegram_messages SET
			channel_title = $2, channel_username = $3, message = $4,
			message_date = $5, media_path = $6, emoji_used = $7, youtube_links = $8
		WHERE message_id = $1
		RETURNING `+messageColumns,
		messageID,
		f.ChannelTitle, f.ChannelUsername, f.Message,
		f.MessageDate, f.MediaPath, f.EmojiUsed, f.YouTubeLinks,
	)
	out, err := scanRow(row)
	if err != nil {
		if perr.IsNoRows(err) {
			return Row{}, perr.NotFoundf("message %d not found", messageID)
		}
		return Row{}, perr.FromPostgres(err, "update message")
	}
	return out, nil
}

func (r *queries) Delete(ctx context.Context, messageID int64) (Row, error) {
	row := r.q.QueryRow(ctx,
		`DELETE FROM telegram_messages WHERE message_id = $1 RETURNING `+messageColumns,
		messageID,
	)
	out, err := scanRow(row)
	if err != nil {
		if perr.IsNoRows(err) {
			return Row{}, perr.NotFoundf("message %d not found", messageID)
		}
		return Row{}, perr.FromPostgres(err, "delete message")
	}
	return out, nil
}
