// Package telegram adapts the Telegram Bot API to the scrape ports
package telegram

import (
	"net/http"
	"net/url"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	perr "telescrape/internal/platform/errors"
)

// TelegramBot is the slice of the bot API we consume, split out for fakes
type TelegramBot interface {
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
}

// botWrapper wraps tgbotapi.BotAPI to implement TelegramBot
type botWrapper struct {
	bot *tgbotapi.BotAPI
}

func (w *botWrapper) GetChat(c tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error) {
	return w.bot.GetChat(c)
}

func (w *botWrapper) GetUpdates(c tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	return w.bot.GetUpdates(c)
}

func (w *botWrapper) GetFile(c tgbotapi.FileConfig) (tgbotapi.File, error) {
	return w.bot.GetFile(c)
}

// BotFactory creates TelegramBot instances (allows fakes in tests)
type BotFactory func(token string, client *http.Client) (TelegramBot, error)

// DefaultBotFactory builds a real bot against the public API endpoint
var DefaultBotFactory BotFactory = func(token string, client *http.Client) (TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, err
	}
	return &botWrapper{bot: bot}, nil
}

// Config configures the client
type Config struct {
	Token string
	Proxy string // optional http proxy url
}

// Client owns the bot handle shared by the fetcher and downloader
type Client struct {
	bot        TelegramBot
	token      string
	httpClient *http.Client
	pump       *updatePump
}

// NewClient dials the bot API; a missing token is a startup error
func NewClient(cfg Config) (*Client, error) {
	return NewClientWithFactory(cfg, DefaultBotFactory)
}

// NewClientWithFactory creates a Client with a custom bot factory (for testing)
func NewClientWithFactory(cfg Config, factory BotFactory) (*Client, error) {
	if cfg.Token == "" {
		return nil, perr.InvalidArgf("telegram token is required")
	}

	client := http.DefaultClient
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, perr.InvalidArgf("parse proxy url: %v", err)
		}
		client = &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)},
		}
	}

	bot, err := factory(cfg.Token, client)
	if err != nil {
		return nil, perr.Unavailablef("create telegram bot: %v", err)
	}
	return &Client{bot: bot, token: cfg.Token, httpClient: client, pump: newUpdatePump(bot)}, nil
}
