// Package domain holds DTOs for the messages http and service contracts
package domain

import "time"

// MessageInput is the payload for creating or replacing a message
type MessageInput struct {
	ChannelTitle    string     `json:"channel_title" validate:"omitempty,max=500"`
	ChannelUsername string     `json:"channel_username" validate:"omitempty,max=200"`
	MessageID       int64      `json:"message_id" validate:"required,min=1"`
	Message         string     `json:"message,omitempty"`
	MessageDate     *time.Time `json:"message_date,omitempty"`
	MediaPath       string     `json:"media_path,omitempty"`
	EmojiUsed       string     `json:"emoji_used,omitempty"`
	YouTubeLinks    string     `json:"youtube_links,omitempty"`
}

// Message is the stored representation returned to clients
type Message struct {
	ID              int64      `json:"id"`
	ChannelTitle    string     `json:"channel_title"`
	ChannelUsername string     `json:"channel_username"`
	MessageID       int64      `json:"message_id"`
	Message         string     `json:"message"`
	MessageDate     *time.Time `json:"message_date"`
	MediaPath       string     `json:"media_path"`
	EmojiUsed       string     `json:"emoji_used"`
	YouTubeLinks    string     `json:"youtube_links"`
}

// ListInput bounds a paginated read
type ListInput struct {
	Skip  int
	Limit int
}
