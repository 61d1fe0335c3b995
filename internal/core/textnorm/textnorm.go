// Package textnorm normalizes free-text message fields and extracts
// derived fields (emoji, embedded YouTube links)
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Sentinels used at the storage boundary so fields stay non-null
const (
	NoMessage     = "No Message"
	NoMedia       = "No Media"
	NoEmoji       = "No emoji"
	NoYouTubeLink = "No YouTube link"
)

// emojiTable covers the pictographic blocks we recognize as emoji
var emojiTable = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2600, Hi: 0x26FF, Stride: 1}, // misc symbols
		{Lo: 0x2700, Hi: 0x27BF, Stride: 1}, // dingbats
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1}, // arrows, stars
	},
	R32: []unicode.Range32{
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1}, // misc symbols and pictographs
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1}, // emoticons
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1}, // transport and map
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1}, // supplemental symbols
		{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1}, // symbols and pictographs extended
	},
}

// scheme is matched case-sensitively, www. is optional
var youtubeRe = regexp.MustCompile(`https?://(?:www\.)?(?:youtube\.com|youtu\.be)/\S+`)

// NFC returns s in Unicode normal form C so emoji and link scans see a
// stable code-point sequence
func NFC(s string) string { return norm.NFC.String(s) }

// ExtractEmojis returns every recognized emoji in order of appearance,
// concatenated, or the NoEmoji sentinel when none are present
func ExtractEmojis(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.Is(emojiTable, r) {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return NoEmoji
	}
	return b.String()
}

// ExtractYouTubeLinks returns all YouTube links joined with ", ", or the
// NoYouTubeLink sentinel when none are present
func ExtractYouTubeLinks(s string) string {
	matches := youtubeRe.FindAllString(s, -1)
	if len(matches) == 0 {
		return NoYouTubeLink
	}
	return strings.Join(matches, ", ")
}

// RemoveYouTubeLinks strips every YouTube link from s
func RemoveYouTubeLinks(s string) string {
	return youtubeRe.ReplaceAllString(s, "")
}

// RemoveEmojis strips every recognized emoji from s
func RemoveEmojis(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.Is(emojiTable, r) {
			return -1
		}
		return r
	}, s)
}

// CleanText removes extracted substrings (links, emoji) and trims the result,
// so the canonical text never repeats an extracted value
func CleanText(s string) string {
	s = RemoveYouTubeLinks(s)
	s = RemoveEmojis(s)
	return strings.TrimSpace(s)
}
