package tags

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lmbatbot/internal/domain"
	"lmbatbot/internal/logging"
)

// UpsertOutcome reports whether an upsert created a new record or replaced an
// existing one.
type UpsertOutcome int

const (
	OutcomeCreated UpsertOutcome = iota
	OutcomeUpdated
)

// DeleteOutcome reports whether a delete removed a record.
type DeleteOutcome int

const (
	OutcomeDeleted DeleteOutcome = iota
	OutcomeNotFound
)

type tagCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Directory provides chat-scoped CRUD over tag groups. The group string is
// treated as opaque; callers prefix the hashtag marker (see GroupName).
type Directory struct {
	tags   tagCollection
	logger *logrus.Entry
}

// NewDirectory constructs a Directory for the provided tags collection.
func NewDirectory(tags tagCollection, logger *logrus.Entry) *Directory {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Directory{
		tags:   tags,
		logger: logger,
	}
}

// List returns all tag groups for a chat in store-default order.
func (d *Directory) List(ctx context.Context, chatID int64) ([]domain.TagGroup, error) {
	if d == nil || d.tags == nil {
		return nil, errors.New("tag directory is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	cursor, err := d.tags.Find(ctx, bson.M{"chat_id": chatID})
	if err != nil {
		return nil, fmt.Errorf("find tag groups: %w", err)
	}

	groups := make([]domain.TagGroup, 0)
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode tag groups: %w", err)
	}

	return groups, nil
}

// Upsert atomically inserts or fully replaces the (chat, group) record. The
// emoji and members are replaced wholly, never merged. Members are normalized
// before storage: leading "@" stripped, empty tokens dropped, duplicates
// removed, order preserved.
func (d *Directory) Upsert(ctx context.Context, chatID int64, group, emoji string, members []string) (UpsertOutcome, error) {
	if d == nil || d.tags == nil {
		return OutcomeCreated, errors.New("tag directory is not initialized")
	}
	if ctx == nil {
		return OutcomeCreated, errors.New("context is required")
	}
	if group == "" {
		return OutcomeCreated, errors.New("group is required")
	}

	result, err := d.tags.UpdateOne(ctx,
		bson.M{"chat_id": chatID, "group": group},
		bson.M{"$set": bson.M{
			"emoji":   emoji,
			"members": NormalizeHandles(members),
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return OutcomeCreated, fmt.Errorf("upsert tag group: %w", err)
	}

	if result != nil && result.MatchedCount > 0 {
		d.logger.WithFields(logging.Fields{
			"event":   "tag_group_updated",
			"chat_id": chatID,
			"group":   group,
		}).Info("replaced tag group")
		return OutcomeUpdated, nil
	}

	d.logger.WithFields(logging.Fields{
		"event":   "tag_group_created",
		"chat_id": chatID,
		"group":   group,
	}).Info("created tag group")

	return OutcomeCreated, nil
}

// Delete removes at most one (chat, group) record.
func (d *Directory) Delete(ctx context.Context, chatID int64, group string) (DeleteOutcome, error) {
	if d == nil || d.tags == nil {
		return OutcomeNotFound, errors.New("tag directory is not initialized")
	}
	if ctx == nil {
		return OutcomeNotFound, errors.New("context is required")
	}

	result, err := d.tags.DeleteOne(ctx, bson.M{"chat_id": chatID, "group": group})
	if err != nil {
		return OutcomeNotFound, fmt.Errorf("delete tag group: %w", err)
	}

	if result == nil || result.DeletedCount == 0 {
		return OutcomeNotFound, nil
	}

	d.logger.WithFields(logging.Fields{
		"event":   "tag_group_deleted",
		"chat_id": chatID,
		"group":   group,
	}).Info("deleted tag group")

	return OutcomeDeleted, nil
}

// FindByGroups returns exactly the groups among names that exist for the chat;
// absent names are silently omitted.
func (d *Directory) FindByGroups(ctx context.Context, chatID int64, names []string) ([]domain.TagGroup, error) {
	if d == nil || d.tags == nil {
		return nil, errors.New("tag directory is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if len(names) == 0 {
		return nil, nil
	}

	cursor, err := d.tags.Find(ctx, bson.M{
		"chat_id": chatID,
		"group":   bson.M{"$in": names},
	})
	if err != nil {
		return nil, fmt.Errorf("find tag groups by name: %w", err)
	}

	groups := make([]domain.TagGroup, 0, len(names))
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode tag groups: %w", err)
	}

	return groups, nil
}

// NormalizeHandles strips a leading "@" from each handle, drops empty tokens,
// and removes duplicates while keeping the supplied order.
func NormalizeHandles(handles []string) []string {
	normalized := make([]string, 0, len(handles))
	seen := make(map[string]struct{}, len(handles))

	for _, handle := range handles {
		handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
		if handle == "" {
			continue
		}
		if _, dup := seen[handle]; dup {
			continue
		}
		seen[handle] = struct{}{}
		normalized = append(normalized, handle)
	}

	return normalized
}
