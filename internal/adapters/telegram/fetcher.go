package telegram

import (
	"context"
	"io"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	perr "telescrape/internal/platform/errors"
	"telescrape/internal/services/scrape/domain"
)

// updatePage is how many updates we ask for per poll
const updatePage = 100

// Fetch resolves the channel and returns a lazy stream of channel posts
// strictly newer than cursor, up to max. An unresolvable handle maps to
// ChannelUnavailable so the caller can skip the channel
func (c *Client) Fetch(ctx context.Context, ch domain.Channel, cursor int64, max int) (domain.Channel, domain.MessageStream, error) {
	chat, err := c.bot.GetChat(tgbotapi.ChatInfoConfig{
		ChatConfig: tgbotapi.ChatConfig{SuperGroupUsername: "@" + ch.Handle},
	})
	if err != nil {
		return ch, nil, perr.ChannelUnavailablef("resolve %s: %v", ch.Handle, err)
	}
	ch.Title = chat.Title

	return ch, &stream{
		ctx:    ctx,
		pump:   c.pump,
		chatID: chat.ID,
		cursor: cursor,
		max:    max,
	}, nil
}

// updatePump owns the bot's getUpdates queue. Telegram keeps a single
// consuming queue per token and treats the offset as an ack for every
// lower update id, so one poll loop must serve all channels: the pump
// polls under a lock and routes each channel_post to its chat's buffer
type updatePump struct {
	bot TelegramBot

	mu     sync.Mutex
	offset int
	byChat map[int64][]domain.Message
}

func newUpdatePump(bot TelegramBot) *updatePump {
	return &updatePump{bot: bot, byChat: make(map[int64][]domain.Message)}
}

// take hands out everything buffered for chatID, polling while the
// buffer is empty. done reports that the queue holds no further updates
func (p *updatePump) take(ctx context.Context, chatID int64) (msgs []domain.Message, done bool, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		if buf := p.byChat[chatID]; len(buf) > 0 {
			delete(p.byChat, chatID)
			return buf, false, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		n, err := p.poll()
		if err != nil {
			return nil, false, err
		}
		if n == 0 {
			return nil, true, nil
		}
	}
}

// poll runs one getUpdates call and routes posts by chat. The caller
// holds mu; overlapping polls on one token are answered with 409
func (p *updatePump) poll() (int, error) {
	cfg := tgbotapi.NewUpdate(p.offset)
	cfg.Limit = updatePage
	cfg.AllowedUpdates = []string{"channel_post"}

	updates, err := p.bot.GetUpdates(cfg)
	if err != nil {
		return 0, perr.Unavailablef("get updates: %v", err)
	}
	for _, u := range updates {
		if u.UpdateID >= p.offset {
			p.offset = u.UpdateID + 1
		}
		post := u.ChannelPost
		if post == nil || post.Chat == nil {
			continue
		}
		p.byChat[post.Chat.ID] = append(p.byChat[post.Chat.ID], toMessage(post))
	}
	return len(updates), nil
}

// stream filters the pump's feed down to one chat; nothing is buffered
// beyond what the pump has routed to this chat so far
type stream struct {
	ctx    context.Context
	pump   *updatePump
	chatID int64
	cursor int64
	max    int

	buf     []domain.Message
	emitted int
	drained bool
}

// Next returns the next message or io.EOF when the stream is drained
func (s *stream) Next() (domain.Message, error) {
	for {
		if s.max > 0 && s.emitted >= s.max {
			return domain.Message{}, io.EOF
		}
		if err := s.ctx.Err(); err != nil {
			return domain.Message{}, err
		}
		if len(s.buf) > 0 {
			msg := s.buf[0]
			s.buf = s.buf[1:]
			s.emitted++
			return msg, nil
		}
		if s.drained {
			return domain.Message{}, io.EOF
		}
		if err := s.fill(); err != nil {
			return domain.Message{}, err
		}
	}
}

func (s *stream) fill() error {
	msgs, done, err := s.pump.take(s.ctx, s.chatID)
	if err != nil {
		return err
	}
	if done {
		s.drained = true
		return nil
	}
	for _, m := range msgs {
		if m.ID <= s.cursor {
			continue
		}
		s.buf = append(s.buf, m)
	}
	return nil
}

// Close releases nothing today; the pump is shared across streams
func (s *stream) Close() error { return nil }

func toMessage(post *tgbotapi.Message) domain.Message {
	msg := domain.Message{
		ID:   int64(post.MessageID),
		Text: post.Text,
		Date: time.Unix(int64(post.Date), 0).UTC(),
	}
	if msg.Text == "" && post.Caption != "" {
		msg.Text = post.Caption
	}

	switch {
	case len(post.Photo) > 0:
		// largest rendition; photos come without a declared MIME type
		photo := post.Photo[len(post.Photo)-1]
		msg.Media = &domain.Media{FileID: photo.FileID}
	case post.Document != nil:
		msg.Media = &domain.Media{FileID: post.Document.FileID, MimeType: post.Document.MimeType}
	case post.Video != nil:
		msg.Media = &domain.Media{FileID: post.Video.FileID, MimeType: post.Video.MimeType}
	}
	return msg
}
