// Package store encapsulates MongoDB client management and collection helpers.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type countCollection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// StatsProvider exposes helper methods to retrieve collection counts for basic
// diagnostics without leaking MongoDB internals to callers.
type StatsProvider struct {
	tags  countCollection
	words countCollection
}

// NewStatsProvider constructs a StatsProvider backed by the provided tag and
// word counter collections.
func NewStatsProvider(tags, words countCollection) *StatsProvider {
	return &StatsProvider{
		tags:  tags,
		words: words,
	}
}

// CountTagGroups returns the number of documents in the tags collection.
func (p *StatsProvider) CountTagGroups(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if p == nil || p.tags == nil {
		return 0, errors.New("stats provider is not initialized")
	}

	count, err := p.tags.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count tag groups: %w", err)
	}

	return count, nil
}

// CountTrackedWords returns the number of documents in the word_counts collection.
func (p *StatsProvider) CountTrackedWords(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if p == nil || p.words == nil {
		return 0, errors.New("stats provider is not initialized")
	}

	count, err := p.words.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count tracked words: %w", err)
	}

	return count, nil
}
