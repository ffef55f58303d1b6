// Package telegram hosts the Telegram client, routing, and handlers.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/sirupsen/logrus"

	"lmbatbot/internal/config"
	"lmbatbot/internal/feature/chats"
	"lmbatbot/internal/feature/tags"
	"lmbatbot/internal/feature/users"
	"lmbatbot/internal/feature/words"
	"lmbatbot/internal/logging"
	"lmbatbot/internal/metrics"
)

type botRunner interface {
	Start(ctx context.Context)
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

// api is the subset of bot.Bot the handlers call, split out so tests can run
// handlers against a fake transport.
type api interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	DeleteMessage(ctx context.Context, params *bot.DeleteMessageParams) (bool, error)
	GetStickerSet(ctx context.Context, params *bot.GetStickerSetParams) (*models.StickerSet, error)
	SendSticker(ctx context.Context, params *bot.SendStickerParams) (*models.Message, error)
}

var (
	defaultAllowedUpdates = bot.AllowedUpdates{
		"message",
	}

	createBot = func(token string, options ...bot.Option) (botRunner, error) {
		return bot.New(token, options...)
	}
)

// commandList enumerates the commands advertised to Telegram clients.
func commandList() []models.BotCommand {
	return []models.BotCommand{
		{Command: "taglist", Description: "Lists available tag groups"},
		{Command: "tagadd", Description: "Adds a tag group"},
		{Command: "tagdelete", Description: "Deletes a tag group"},
		{Command: "stats", Description: "Shows how many times tracked words have been said"},
		{Command: "wordadd", Description: "Adds a word to the tracked list"},
		{Command: "worddelete", Description: "Removes a word from the tracked list"},
		{Command: "bocchi", Description: "Sends a random sticker from the configured pack"},
	}
}

// Client wraps the Telegram bot instance and the feature dependencies the
// handlers dispatch to.
type Client struct {
	bot    botRunner
	logger *logrus.Entry

	directory      *tags.Directory
	aggregator     *tags.Aggregator
	tracker        *words.Tracker
	userRegistrar  *users.Registrar
	chatRegistrar  *chats.Registrar
	stickerSetName string
	deleteTagged   bool
}

// Option customizes the Client during construction.
type Option func(*Client)

// WithTagDirectory wires the tag group directory used by the tag commands.
func WithTagDirectory(directory *tags.Directory) Option {
	return func(c *Client) {
		c.directory = directory
	}
}

// WithMentionAggregator wires the hashtag mention resolver.
func WithMentionAggregator(aggregator *tags.Aggregator) Option {
	return func(c *Client) {
		c.aggregator = aggregator
	}
}

// WithWordTracker wires the word counter feature.
func WithWordTracker(tracker *words.Tracker) Option {
	return func(c *Client) {
		c.tracker = tracker
	}
}

// WithUserRegistrar wires the user registry updated on every handled message.
func WithUserRegistrar(registrar *users.Registrar) Option {
	return func(c *Client) {
		c.userRegistrar = registrar
	}
}

// WithChatRegistrar wires the chat registry updated on every handled message.
func WithChatRegistrar(registrar *chats.Registrar) Option {
	return func(c *Client) {
		c.chatRegistrar = registrar
	}
}

// NewClient initializes the Telegram bot with long polling and the message
// handler.
func NewClient(cfg config.Config, logger *logrus.Entry, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.TelegramToken) == "" {
		return nil, errors.New("telegram token is required")
	}
	if logger == nil {
		logger = logging.Logger()
	}

	client := &Client{
		logger:         logger,
		stickerSetName: cfg.StickerSetName,
		deleteTagged:   cfg.DeleteTaggedMessage,
	}

	for _, opt := range opts {
		opt(client)
	}

	tgBot, err := createBot(cfg.TelegramToken,
		bot.WithAllowedUpdates(defaultAllowedUpdates),
		bot.WithDefaultHandler(client.defaultHandler()),
		bot.WithErrorsHandler(errorHandler(logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot client: %w", err)
	}

	client.bot = tgBot

	return client, nil
}

// Start advertises the command list and begins receiving updates via long
// polling until the context is canceled.
func (c *Client) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: commandList()}); err != nil {
		c.logger.WithField("event", "telegram_commands").WithError(err).Warn("failed to advertise command list")
	}

	c.logger.WithFields(logging.Fields{
		"event":           "telegram_listen",
		"allowed_updates": defaultAllowedUpdates,
	}).Info("starting telegram long polling")

	c.bot.Start(ctx)

	c.logger.WithField("event", "telegram_stopped").Info("telegram polling stopped")
}

func (c *Client) defaultHandler() bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		c.handleUpdate(ctx, b, update)
	}
}

func errorHandler(logger *logrus.Entry) bot.ErrorsHandler {
	if logger == nil {
		logger = logging.Logger()
	}

	return func(err error) {
		if err == nil {
			return
		}

		logger.WithField("event", "telegram_error").WithError(err).Error("telegram polling error")
	}
}

// handleUpdate is the single routing point: group-chat filter, registries,
// then either a command or the word tracker plus the hashtag mention path.
// Commands and hashtag handling are mutually exclusive per message.
func (c *Client) handleUpdate(ctx context.Context, transport api, update *models.Update) {
	if update == nil || update.Message == nil {
		metrics.UpdatesTotal.WithLabelValues("other").Inc()
		return
	}

	metrics.UpdatesTotal.WithLabelValues("message").Inc()

	msg := update.Message
	if msg.Chat.Type != models.ChatTypeGroup && msg.Chat.Type != models.ChatTypeSupergroup {
		c.logger.WithFields(logging.Fields{
			"event":     "update_skipped",
			"chat_type": msg.Chat.Type,
		}).Debug("ignoring non-group message")
		return
	}

	c.registerSighting(ctx, msg)

	if command, args, ok := parseCommand(msg.Text); ok {
		c.handleCommand(ctx, transport, msg, command, args)
		return
	}

	c.trackWords(ctx, msg)

	if hasHashtags(msg.Entities) {
		c.handleMention(ctx, transport, msg)
	}
}

// registerSighting records the chat and sender; failures are logged and do
// not block message handling.
func (c *Client) registerSighting(ctx context.Context, msg *models.Message) {
	if c.chatRegistrar != nil {
		if _, err := c.chatRegistrar.EnsureChat(ctx, msg.Chat.ID, msg.Chat.Title); err != nil {
			c.logger.WithField("event", "chat_register_error").WithError(err).Warn("failed to register chat")
		}
	}

	if c.userRegistrar != nil && msg.From != nil {
		if _, err := c.userRegistrar.EnsureUser(ctx, msg.From.ID, msg.From.Username); err != nil {
			c.logger.WithField("event", "user_register_error").WithError(err).Warn("failed to register user")
		}
	}
}

func (c *Client) trackWords(ctx context.Context, msg *models.Message) {
	if c.tracker == nil || msg.Text == "" {
		return
	}

	hits, err := c.tracker.Track(ctx, msg.Chat.ID, msg.Text)
	if err != nil {
		c.logger.WithField("event", "word_track_error").WithError(err).Warn("failed to track words")
		return
	}

	metrics.WordHits.Add(float64(hits))
}

// parseCommand splits a leading /command token from its argument block. The
// keyword is lowercased and an @botname suffix is tolerated. The argument
// block keeps its line breaks: /tagadd arguments span several lines.
func parseCommand(text string) (command, args string, ok bool) {
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	token := text[1:]
	if idx := strings.IndexAny(token, " \n\t"); idx >= 0 {
		args = token[idx+1:]
		token = token[:idx]
	}
	if token == "" {
		return "", "", false
	}

	if at := strings.Index(token, "@"); at >= 0 {
		token = token[:at]
	}

	return strings.ToLower(token), args, true
}
