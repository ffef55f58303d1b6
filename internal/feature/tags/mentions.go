package tags

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"lmbatbot/internal/domain"
	"lmbatbot/internal/logging"
)

// ErrNoGroupsMatched signals that none of the hashtags in a message resolved
// to a stored tag group. Callers treat this as a silent no-op.
var ErrNoGroupsMatched = errors.New("no tag groups matched")

// Mention is the aggregated result of resolving a message's hashtags.
type Mention struct {
	// Marker is the concatenation of the matched groups' emojis in hashtag
	// order, duplicates preserved.
	Marker string
	// Recipients is the deduplicated union of matched groups' members with
	// the sender removed, sorted for deterministic rendering.
	Recipients []string
	// Tags echoes the matched hashtag tokens in message order.
	Tags []string
}

type groupFinder interface {
	FindByGroups(ctx context.Context, chatID int64, names []string) ([]domain.TagGroup, error)
}

// Aggregator resolves hashtag tokens to tag groups and builds the notification
// payload. It never mutates stored state.
type Aggregator struct {
	directory groupFinder
	logger    *logrus.Entry
}

// NewAggregator constructs an Aggregator over the provided directory.
func NewAggregator(directory groupFinder, logger *logrus.Entry) *Aggregator {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Aggregator{
		directory: directory,
		logger:    logger,
	}
}

// Resolve maps the hashtags found in a message to stored tag groups, unions
// their members, and excludes the sender. Unmatched hashtags are dropped
// silently; when nothing matches, ErrNoGroupsMatched is returned. An empty
// recipient set after sender exclusion is still a success: the notification
// communicates which groups were invoked even with zero addressees.
func (a *Aggregator) Resolve(ctx context.Context, chatID int64, hashtags []string, sender string) (Mention, error) {
	if a == nil || a.directory == nil {
		return Mention{}, errors.New("mention aggregator is not initialized")
	}
	if ctx == nil {
		return Mention{}, errors.New("context is required")
	}

	found, err := a.directory.FindByGroups(ctx, chatID, hashtags)
	if err != nil {
		return Mention{}, err
	}
	if len(found) == 0 {
		return Mention{}, ErrNoGroupsMatched
	}

	byName := make(map[string]domain.TagGroup, len(found))
	for _, group := range found {
		byName[group.Group] = group
	}

	// Walk the hashtags in message order so markers and echoed tokens stay
	// deterministic regardless of store iteration order.
	var marker strings.Builder
	matched := make([]string, 0, len(found))
	recipients := make(map[string]struct{})
	for _, tag := range hashtags {
		group, ok := byName[tag]
		if !ok {
			continue
		}
		marker.WriteString(group.Emoji)
		matched = append(matched, tag)
		for _, member := range group.Members {
			if member == sender {
				continue
			}
			recipients[member] = struct{}{}
		}
	}

	if len(matched) == 0 {
		return Mention{}, ErrNoGroupsMatched
	}

	handles := make([]string, 0, len(recipients))
	for handle := range recipients {
		handles = append(handles, handle)
	}
	sort.Strings(handles)

	a.logger.WithFields(logging.Fields{
		"event":      "mention_resolved",
		"chat_id":    chatID,
		"groups":     matched,
		"recipients": len(handles),
	}).Debug("resolved hashtag mention")

	return Mention{
		Marker:     marker.String(),
		Recipients: handles,
		Tags:       matched,
	}, nil
}
