// Package service contains messages api workflows
package service

import (
	"context"

	"telescrape/internal/modkit/repokit"
	perr "telescrape/internal/platform/errors"
	"telescrape/internal/services/api/messages/domain"
	"telescrape/internal/services/api/messages/repo"
)

// Service defines the service contract for messages
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	Repo   repo.Repo
	binder repokit.Binder[repo.Repo]
	db     repokit.TxRunner
}

// New creates a new messages service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo]) *Svc {
	if db == nil {
		panic("messages.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("messages.Service requires a non nil Repo binder")
	}
	return &Svc{Repo: binder.Bind(db), binder: binder, db: db}
}

func toMessage(r repo.Row) domain.Message {
	return domain.Message{
		ID:              r.ID,
		ChannelTitle:    r.ChannelTitle,
		ChannelUsername: r.ChannelUsername,
		MessageID:       r.MessageID,
		Message:         r.Message,
		MessageDate:     r.MessageDate,
		MediaPath:       r.MediaPath,
		EmojiUsed:       r.EmojiUsed,
		YouTubeLinks:    r.YouTubeLinks,
	}
}

func toFields(in domain.MessageInput) repo.Fields {
	return repo.Fields{
		ChannelTitle:    in.ChannelTitle,
		ChannelUsername: in.ChannelUsername,
		MessageID:       in.MessageID,
		Message:         in.Message,
		MessageDate:     in.MessageDate,
		MediaPath:       in.MediaPath,
		EmojiUsed:       in.EmojiUsed,
		YouTubeLinks:    in.YouTubeLinks,
	}
}

// Create stores a new message
func (s *Svc) Create(ctx context.Context, in domain.MessageInput) (domain.Message, error) {
	row, err := s.Repo.Create(ctx, toFields(in))
	if err != nil {
		return domain.Message{}, perr.WithOp(err, "messages.create")
	}
	return toMessage(row), nil
}

// Get returns one message by its natural key
func (s *Svc) Get(ctx context.Context, messageID int64) (domain.Message, error) {
	row, err := s.Repo.GetByMessageID(ctx, messageID)
	if err != nil {
		return domain.Message{}, perr.WithOp(err, "messages.get")
	}
	return toMessage(row), nil
}

// List returns a page of messages and the total row count
func (s *Svc) List(ctx context.Context, in domain.ListInput) ([]domain.Message, int, error) {
	if in.Skip < 0 {
		in.Skip = 0
	}
	if in.Limit <= 0 || in.Limit > 200 {
		in.Limit = 10
	}

	rows, err := s.Repo.List(ctx, in.Skip, in.Limit)
	if err != nil {
		return nil, 0, perr.WithOp(err, "messages.list")
	}
	total, err := s.Repo.Count(ctx)
	if err != nil {
		return nil, 0, perr.WithOp(err, "messages.list")
	}

	out := make([]domain.Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, toMessage(r))
	}
	return out, total, nil
}

// Update replaces the writable fields of a message
func (s *Svc) Update(ctx context.Context, messageID int64, in domain.MessageInput) (domain.Message, error) {
	row, err := s.Repo.Update(ctx, messageID, toFields(in))
	if err != nil {
		return domain.Message{}, perr.WithOp(err, "messages.update")
	}
	return toMessage(row), nil
}

// Delete removes a message and returns its last stored state
func (s *Svc) Delete(ctx context.Context, messageID int64) (domain.Message, error) {
	row, err := s.Repo.Delete(ctx, messageID)
	if err != nil {
		return domain.Message{}, perr.WithOp(err, "messages.delete")
	}
	return toMessage(row), nil
}
