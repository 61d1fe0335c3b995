// Package domain holds the core types and ports for the scrape stage
package domain

import "time"

// Channel is an external channel identity; Title is resolved lazily on
// the first successful fetch
type Channel struct {
	Handle string // username without the leading @
	Title  string
}

// Media describes an attachment on a message: a retrieval handle plus
// whatever MIME type the source declared (may be empty)
type Media struct {
	FileID   string
	MimeType string
}

// Message is one element of a fetch stream
type Message struct {
	ID    int64
	Text  string
	Date  time.Time
	Media *Media
}

// RawRecord is the row shape appended to a per-channel raw dataset
type RawRecord struct {
	ChannelTitle    string
	ChannelUsername string
	MessageID       int64
	Text            string
	Date            time.Time
	MediaPath       string
}

// RunSummary reports what a scrape run did
type RunSummary struct {
	Channels        int
	SkippedChannels int
	Messages        int
	MediaErrors     int
}
