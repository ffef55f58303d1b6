package telegram

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"lmbatbot/internal/feature/tags"
	"lmbatbot/internal/feature/words"
	"lmbatbot/internal/logging"
	"lmbatbot/internal/metrics"
)

const (
	replySomethingWrong = "ERROR: Something went wrong."

	usageTagAdd     = "/tagadd <name>\n<emoji>\n<@tag1> <@tag2> ..."
	usageTagDelete  = "/tagdelete <group>"
	usageWordAdd    = "/wordadd <word>"
	usageWordDelete = "/worddelete <word>"
)

func (c *Client) handleCommand(ctx context.Context, transport api, msg *models.Message, command, args string) {
	metrics.CommandsTotal.WithLabelValues(command).Inc()

	logger := c.logger.WithFields(logging.Fields{
		"event":   "command",
		"command": command,
		"chat_id": msg.Chat.ID,
	})

	switch command {
	case "taglist":
		c.handleTagList(ctx, transport, msg)
	case "tagadd":
		c.handleTagAdd(ctx, transport, msg, args)
	case "tagdelete":
		c.handleTagDelete(ctx, transport, msg, args)
	case "stats":
		c.handleStats(ctx, transport, msg)
	case "wordadd":
		c.handleWordAdd(ctx, transport, msg, args)
	case "worddelete":
		c.handleWordDelete(ctx, transport, msg, args)
	case "bocchi":
		c.handleBocchi(ctx, transport, msg)
	default:
		logger.Debug("unknown command ignored")
	}
}

func (c *Client) handleTagList(ctx context.Context, transport api, msg *models.Message) {
	if c.directory == nil {
		return
	}

	groups, err := c.directory.List(ctx, msg.Chat.ID)
	if err != nil {
		c.logger.WithField("event", "taglist_error").WithError(err).Error("failed to list tag groups")
		c.reply(ctx, transport, msg.Chat.ID, replySomethingWrong)
		return
	}

	c.replyMarkdown(ctx, transport, msg.Chat.ID, formatTagList(groups))
}

func (c *Client) handleTagAdd(ctx context.Context, transport api, msg *models.Message, args string) {
	if c.directory == nil {
		return
	}

	request, err := tags.ParseAddArgs(args)
	if err != nil {
		var argErr *tags.ArgumentCountError
		if errors.As(err, &argErr) {
			c.reply(ctx, transport, msg.Chat.ID, usageTagAdd)
			return
		}

		c.logger.WithField("event", "tagadd_error").WithError(err).Error("failed to parse tagadd arguments")
		c.reply(ctx, transport, msg.Chat.ID, replySomethingWrong)
		return
	}

	// Stored with the "#" marker so lookups can use hashtag tokens directly.
	name := tags.GroupName(request.Group)

	outcome, err := c.directory.Upsert(ctx, msg.Chat.ID, name, request.Emoji, request.Members)
	if err != nil {
		c.logger.WithField("event", "tagadd_error").WithError(err).Error("failed to upsert tag group")
		c.reply(ctx, transport, msg.Chat.ID, replySomethingWrong)
		return
	}

	verb := "Added"
	if outcome == tags.OutcomeUpdated {
		verb = "Updated"
	}

	c.reply(ctx, transport, msg.Chat.ID, fmt.Sprintf("%s group %s.", verb, name))
}

func (c *Client) handleTagDelete(ctx context.Context, transport api, msg *models.Message, args string) {
	if c.directory == nil {
		return
	}

	group, err := tags.ParseDeleteArgs(args)
	if err != nil {
		c.reply(ctx, transport, msg.Chat.ID, usageTagDelete)
		return
	}

	name := tags.GroupName(group)

	outcome, err := c.directory.Delete(ctx, msg.Chat.ID, name)
	if err != nil {
		c.logger.WithField("event", "tagdelete_error").WithError(err).Error("failed to delete tag group")
		c.reply(ctx, transport, msg.Chat.ID, replySomethingWrong)
		return
	}
	if outcome == tags.OutcomeNotFound {
		c.reply(ctx, transport, msg.Chat.ID, fmt.Sprintf("WARNING: Group %s not found.", name))
		return
	}

	c.reply(ctx, transport, msg.Chat.ID, fmt.Sprintf("Deleted group %s.", name))
}

func (c *Client) handleStats(ctx context.Context, transport api, msg *models.Message) {
	if c.tracker == nil {
		return
	}

	counters, err := c.tracker.Stats(ctx, msg.Chat.ID)
	if err != nil {
		c.logger.WithField("event", "stats_error").WithError(err).Error("failed to load word stats")
		c.reply(ctx, transport, msg.Chat.ID, replySomethingWrong)
		return
	}

	c.replyMarkdown(ctx, transport, msg.Chat.ID, formatStats(counters))
}

func (c *Client) handleWordAdd(ctx context.Context, transport api, msg *models.Message, args string) {
	if c.tracker == nil {
		return
	}

	word, err := words.ParseWordArg(args)
	if err != nil {
		c.reply(ctx, transport, msg.Chat.ID, usageWordAdd)
		return
	}

	outcome, err := c.tracker.Add(ctx, msg.Chat.ID, word)
	if err != nil {
		c.logger.WithField("event", "wordadd_error").WithError(err).Error("failed to add tracked word")
		c.reply(ctx, transport, msg.Chat.ID, replySomethingWrong)
		return
	}

	if outcome == words.OutcomeReset {
		c.replyMarkdown(ctx, transport, msg.Chat.ID, fmt.Sprintf("WARNING: Counter for %s has been reset", mdBold(word)))
		return
	}

	c.replyMarkdown(ctx, transport, msg.Chat.ID, fmt.Sprintf("Added word %s", mdBold(word)))
}

func (c *Client) handleWordDelete(ctx context.Context, transport api, msg *models.Message, args string) {
	if c.tracker == nil {
		return
	}

	word, err := words.ParseWordArg(args)
	if err != nil {
		c.reply(ctx, transport, msg.Chat.ID, usageWordDelete)
		return
	}

	outcome, err := c.tracker.Delete(ctx, msg.Chat.ID, word)
	if err != nil {
		c.logger.WithField("event", "worddelete_error").WithError(err).Error("failed to delete tracked word")
		c.reply(ctx, transport, msg.Chat.ID, replySomethingWrong)
		return
	}

	if outcome == words.OutcomeNotFound {
		c.replyMarkdown(ctx, transport, msg.Chat.ID, fmt.Sprintf("WARNING: Word %s not found", mdBold(word)))
		return
	}

	c.replyMarkdown(ctx, transport, msg.Chat.ID, fmt.Sprintf("Deleted word %s", mdBold(word)))
}

func (c *Client) handleBocchi(ctx context.Context, transport api, msg *models.Message) {
	if c.stickerSetName == "" {
		return
	}

	set, err := transport.GetStickerSet(ctx, &bot.GetStickerSetParams{Name: c.stickerSetName})
	if err != nil {
		c.logger.WithField("event", "sticker_error").WithError(err).Error("failed to load sticker set")
		c.reply(ctx, transport, msg.Chat.ID, replySomethingWrong)
		return
	}
	if set == nil || len(set.Stickers) == 0 {
		c.reply(ctx, transport, msg.Chat.ID, replySomethingWrong)
		return
	}

	sticker := set.Stickers[rand.Intn(len(set.Stickers))]

	_, err = transport.SendSticker(ctx, &bot.SendStickerParams{
		ChatID:  msg.Chat.ID,
		Sticker: &models.InputFileString{Data: sticker.FileID},
	})
	if err != nil {
		c.logger.WithField("event", "sticker_error").WithError(err).Error("failed to send sticker")
	}
}

// handleMention resolves the message's hashtag groups and posts the fan-out
// notification. Messages without any matching group are left alone.
func (c *Client) handleMention(ctx context.Context, transport api, msg *models.Message) {
	if c.aggregator == nil {
		return
	}
	if msg.From == nil || msg.From.Username == "" {
		c.logger.WithField("event", "mention_skipped").Debug("sender has no username")
		return
	}

	hashtags, err := extractHashtags(msg.Text, msg.Entities)
	if err != nil {
		c.logger.WithField("event", "mention_error").WithError(err).Warn("failed to extract hashtags")
		return
	}

	mention, err := c.aggregator.Resolve(ctx, msg.Chat.ID, hashtags, msg.From.Username)
	if err != nil {
		if errors.Is(err, tags.ErrNoGroupsMatched) {
			return
		}

		c.logger.WithField("event", "mention_error").WithError(err).Error("failed to resolve tag groups")
		return
	}

	_, err = transport.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:              msg.Chat.ID,
		Text:                formatMention(mention, msg.Text),
		ParseMode:           models.ParseModeMarkdown,
		DisableNotification: true,
		ReplyParameters:     &models.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		c.logger.WithField("event", "mention_error").WithError(err).Error("failed to send mention notification")
		return
	}

	metrics.MentionNotifications.Inc()

	if c.deleteTagged {
		if _, err := transport.DeleteMessage(ctx, &bot.DeleteMessageParams{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
		}); err != nil {
			c.logger.WithField("event", "mention_delete_error").WithError(err).Warn("failed to delete tagged message")
		}
	}
}

func (c *Client) reply(ctx context.Context, transport api, chatID int64, text string) {
	_, err := transport.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		c.logger.WithField("event", "send_error").WithError(err).Error("failed to send reply")
	}
}

func (c *Client) replyMarkdown(ctx context.Context, transport api, chatID int64, text string) {
	_, err := transport.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeMarkdown,
	})
	if err != nil {
		c.logger.WithField("event", "send_error").WithError(err).Error("failed to send reply")
	}
}
