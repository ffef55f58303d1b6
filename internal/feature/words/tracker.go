// Package words implements the per-chat word occurrence counter.
package words

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lmbatbot/internal/domain"
	"lmbatbot/internal/logging"
)

// AddOutcome reports whether adding a word created a new counter or reset an
// existing one.
type AddOutcome int

const (
	OutcomeAdded AddOutcome = iota
	OutcomeReset
)

// DeleteOutcome reports whether a delete removed a counter.
type DeleteOutcome int

const (
	OutcomeDeleted DeleteOutcome = iota
	OutcomeNotFound
)

type wordCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Tracker maintains per-chat counters for configured words and increments
// them as messages flow through the chat.
type Tracker struct {
	words  wordCollection
	logger *logrus.Entry
}

// NewTracker constructs a Tracker for the provided word counters collection.
func NewTracker(words wordCollection, logger *logrus.Entry) *Tracker {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Tracker{
		words:  words,
		logger: logger,
	}
}

// Stats returns the chat's counters sorted by count descending.
func (t *Tracker) Stats(ctx context.Context, chatID int64) ([]domain.WordCount, error) {
	if t == nil || t.words == nil {
		return nil, errors.New("word tracker is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	cursor, err := t.words.Find(ctx,
		bson.M{"chat_id": chatID},
		options.Find().SetSort(bson.D{{Key: "count", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find word counters: %w", err)
	}

	counters := make([]domain.WordCount, 0)
	if err := cursor.All(ctx, &counters); err != nil {
		return nil, fmt.Errorf("decode word counters: %w", err)
	}

	return counters, nil
}

// Add starts tracking a word for the chat. Re-adding an existing word resets
// its counter to zero. The word is lowercased before storage.
func (t *Tracker) Add(ctx context.Context, chatID int64, word string) (AddOutcome, error) {
	if t == nil || t.words == nil {
		return OutcomeAdded, errors.New("word tracker is not initialized")
	}
	if ctx == nil {
		return OutcomeAdded, errors.New("context is required")
	}

	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return OutcomeAdded, errors.New("word is required")
	}

	result, err := t.words.UpdateOne(ctx,
		bson.M{"chat_id": chatID, "word": word},
		bson.M{"$set": bson.M{"count": int64(0)}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return OutcomeAdded, fmt.Errorf("upsert word counter: %w", err)
	}

	if result != nil && result.MatchedCount > 0 {
		t.logger.WithFields(logging.Fields{
			"event":   "word_counter_reset",
			"chat_id": chatID,
			"word":    word,
		}).Info("reset word counter")
		return OutcomeReset, nil
	}

	t.logger.WithFields(logging.Fields{
		"event":   "word_tracked",
		"chat_id": chatID,
		"word":    word,
	}).Info("tracking new word")

	return OutcomeAdded, nil
}

// Delete stops tracking a word for the chat.
func (t *Tracker) Delete(ctx context.Context, chatID int64, word string) (DeleteOutcome, error) {
	if t == nil || t.words == nil {
		return OutcomeNotFound, errors.New("word tracker is not initialized")
	}
	if ctx == nil {
		return OutcomeNotFound, errors.New("context is required")
	}

	word = strings.ToLower(strings.TrimSpace(word))

	result, err := t.words.DeleteOne(ctx, bson.M{"chat_id": chatID, "word": word})
	if err != nil {
		return OutcomeNotFound, fmt.Errorf("delete word counter: %w", err)
	}

	if result == nil || result.DeletedCount == 0 {
		return OutcomeNotFound, nil
	}

	return OutcomeDeleted, nil
}

// Track counts word-boundary occurrences of every tracked word in the message
// text and increments the matching counters. It returns the total number of
// hits recorded.
func (t *Tracker) Track(ctx context.Context, chatID int64, text string) (int64, error) {
	if t == nil || t.words == nil {
		return 0, errors.New("word tracker is not initialized")
	}
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if text == "" {
		return 0, nil
	}

	cursor, err := t.words.Find(ctx, bson.M{"chat_id": chatID})
	if err != nil {
		return 0, fmt.Errorf("find word counters: %w", err)
	}

	counters := make([]domain.WordCount, 0)
	if err := cursor.All(ctx, &counters); err != nil {
		return 0, fmt.Errorf("decode word counters: %w", err)
	}

	var total int64
	for _, counter := range counters {
		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(counter.Word) + `\b`)
		if err != nil {
			return total, fmt.Errorf("compile word pattern %q: %w", counter.Word, err)
		}

		hits := int64(len(pattern.FindAllStringIndex(text, -1)))
		if hits == 0 {
			continue
		}

		if _, err := t.words.UpdateOne(ctx,
			bson.M{"chat_id": chatID, "word": counter.Word},
			bson.M{"$inc": bson.M{"count": hits}},
		); err != nil {
			return total, fmt.Errorf("increment word counter: %w", err)
		}

		total += hits
	}

	if total > 0 {
		t.logger.WithFields(logging.Fields{
			"event":   "words_tracked",
			"chat_id": chatID,
			"hits":    total,
		}).Debug("incremented word counters")
	}

	return total, nil
}
