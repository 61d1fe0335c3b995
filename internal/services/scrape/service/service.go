// Package service implements the scrape run loop
package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"telescrape/internal/modkit/repokit"
	perr "telescrape/internal/platform/errors"
	"telescrape/internal/platform/logger"
	"telescrape/internal/services/scrape/domain"
)

// Config holds configuration options for the scrape service
type Config struct {
	// Workers caps how many channels fetch at once; <=0 -> 1
	Workers int

	// MediaWorkers caps concurrent media downloads within a channel; <=0 -> 1
	MediaWorkers int

	// MediaDir is where downloaded artifacts land
	MediaDir string
}

// Service implements domain.RunnerPort
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[domain.CursorRepo]
	Fetch  domain.Fetcher
	Media  domain.MediaDownloader
	Sinks  domain.SinkFactory
	Cfg    Config
}

// New constructs the scrape service
func New(
	db repokit.TxRunner,
	binder repokit.Binder[domain.CursorRepo],
	f domain.Fetcher,
	md domain.MediaDownloader,
	sinks domain.SinkFactory,
	cfg Config,
) *Service {
	if db == nil {
		panic("scrape.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("scrape.Service requires a non nil CursorRepo binder")
	}
	return &Service{DB: db, Binder: binder, Fetch: f, Media: md, Sinks: sinks, Cfg: cfg}
}

// channelResult is the per-channel tally folded into the run summary
type channelResult struct {
	messages    int
	mediaErrors int
	skipped     bool
	err         error
}

// Run scrapes every channel with bounded parallelism and returns a summary.
// A channel that cannot be resolved is skipped; any other channel failure
// is counted and the remaining channels still run
func (s *Service) Run(ctx context.Context, channels []string, limit int) (domain.RunSummary, error) {
	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx)

	w := s.Cfg.Workers
	if w <= 0 {
		w = 1
	}

	log.Info().
		Int("channels", len(channels)).
		Int("limit", limit).
		Int("workers", w).
		Msg("scrape run starting")

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sum     domain.RunSummary
		hardErr error
	)
	sem := make(chan struct{}, w)

	for _, raw := range channels {
		handle := strings.TrimPrefix(strings.TrimSpace(raw), "@")
		if handle == "" {
			continue
		}

		select {
		case <-ctx.Done():
			wg.Wait()
			return sum, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(handle string) {
			defer func() { <-sem; wg.Done() }()

			res := s.runChannel(logger.WithChannel(ctx, handle), handle, limit)

			mu.Lock()
			defer mu.Unlock()
			sum.Messages += res.messages
			sum.MediaErrors += res.mediaErrors
			if res.skipped {
				sum.SkippedChannels++
				return
			}
			sum.Channels++
			if res.err != nil && hardErr == nil {
				hardErr = res.err
			}
		}(handle)
	}

	wg.Wait()

	log.Info().
		Int("channels", sum.Channels).
		Int("skipped", sum.SkippedChannels).
		Int("messages", sum.Messages).
		Int("media_errors", sum.MediaErrors).
		Msg("scrape run done")

	return sum, hardErr
}

// pendingMsg carries a message through the ordered append pipeline while
// its media download runs in the background
type pendingMsg struct {
	msg       domain.Message
	mediaPath string
	mediaErr  error
	done      chan struct{}
}

func (s *Service) runChannel(ctx context.Context, handle string, limit int) channelResult {
	log := logger.C(ctx)

	cursor, _, err := s.getCursor(ctx, handle)
	if err != nil {
		log.Error().Err(err).Msg("cursor lookup failed")
		return channelResult{err: err}
	}

	ch, stream, err := s.Fetch.Fetch(ctx, domain.Channel{Handle: handle}, cursor, limit)
	if err != nil {
		if perr.Skippable(err) {
			log.Warn().Err(err).Msg("channel unavailable, skipping")
			return channelResult{skipped: true}
		}
		log.Error().Err(err).Msg("fetch failed")
		return channelResult{err: err}
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("stream close failed")
		}
	}()

	sink, err := s.Sinks.Open(handle)
	if err != nil {
		log.Error().Err(err).Msg("open raw dataset failed")
		return channelResult{err: err}
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("sink close failed")
		}
	}()

	mw := s.Cfg.MediaWorkers
	if mw <= 0 {
		mw = 1
	}

	// media downloads for distinct messages overlap up to mw; appends
	// happen strictly in fetch order on this goroutine
	pending := make(chan *pendingMsg, mw)
	mediaSem := make(chan struct{}, mw)
	fetchErr := make(chan error, 1)

	go func() {
		defer close(pending)
		for {
			msg, nerr := stream.Next()
			if nerr != nil {
				if !errors.Is(nerr, io.EOF) {
					fetchErr <- nerr
				}
				return
			}
			p := &pendingMsg{msg: msg, done: make(chan struct{})}
			if msg.Media == nil {
				close(p.done)
			} else {
				select {
				case mediaSem <- struct{}{}:
				case <-ctx.Done():
					close(p.done)
					pending <- p
					return
				}
				go func() {
					defer func() { <-mediaSem; close(p.done) }()
					p.mediaPath, p.mediaErr = s.Media.Download(ctx, *p.msg.Media, s.Cfg.MediaDir, ch.Handle, p.msg.ID)
				}()
			}
			select {
			case pending <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	var res channelResult
	abort := false
	for p := range pending {
		<-p.done
		if abort {
			// keep draining so the producer never blocks
			continue
		}

		if p.mediaErr != nil {
			if !perr.Skippable(p.mediaErr) {
				log.Error().Int64("message_id", p.msg.ID).Err(p.mediaErr).Msg("media download failed hard")
				res.err = p.mediaErr
				abort = true
				continue
			}
			// the record is still written, with no media path
			res.mediaErrors++
			log.Warn().Int64("message_id", p.msg.ID).Err(p.mediaErr).Msg("media download failed")
			p.mediaPath = ""
		}

		rec := domain.RawRecord{
			ChannelTitle:    ch.Title,
			ChannelUsername: ch.Handle,
			MessageID:       p.msg.ID,
			Text:            p.msg.Text,
			Date:            p.msg.Date,
			MediaPath:       p.mediaPath,
		}
		if aerr := sink.Append(ctx, rec); aerr != nil {
			log.Error().Int64("message_id", p.msg.ID).Err(aerr).Msg("append failed")
			res.err = aerr
			abort = true
			continue
		}
		res.messages++

		// only after the record is durably appended
		if aerr := s.advanceCursor(ctx, ch, p.msg.ID); aerr != nil {
			log.Error().Int64("message_id", p.msg.ID).Err(aerr).Msg("cursor advance failed")
			res.err = aerr
			abort = true
		}
	}

	select {
	case ferr := <-fetchErr:
		log.Error().Err(ferr).Msg("stream failed mid channel")
		res.err = ferr
	default:
	}

	if res.err == nil {
		log.Info().Int("messages", res.messages).Int("media_errors", res.mediaErrors).Msg("channel done")
	}
	return res
}

func (s *Service) getCursor(ctx context.Context, handle string) (int64, bool, error) {
	var (
		id int64
		ok bool
	)
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		var e error
		id, ok, e = s.Binder.Bind(q).GetCursor(ctx, handle)
		return e
	})
	return id, ok, err
}

func (s *Service) advanceCursor(ctx context.Context, ch domain.Channel, id int64) error {
	adv := func() error {
		return s.DB.Tx(ctx, func(q repokit.Queryer) error {
			return s.Binder.Bind(q).AdvanceCursor(ctx, ch, id)
		})
	}
	err := adv()
	// one retry covers serialization aborts; the advance is idempotent
	if err != nil && perr.Retryable(err) {
		err = adv()
	}
	return err
}
