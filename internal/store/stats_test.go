package store

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestStatsProviderCountsTagsAndWords(t *testing.T) {
	tags := &stubCountCollection{count: 7}
	words := &stubCountCollection{count: 3}

	provider := NewStatsProvider(tags, words)

	ctx := context.Background()

	tagCount, err := provider.CountTagGroups(ctx)
	if err != nil {
		t.Fatalf("expected tag group count to succeed, got error: %v", err)
	}
	if tagCount != 7 {
		t.Fatalf("expected 7 tag groups, got %d", tagCount)
	}
	if tags.calls != 1 {
		t.Fatalf("expected tags count to be called once, got %d", tags.calls)
	}

	wordCount, err := provider.CountTrackedWords(ctx)
	if err != nil {
		t.Fatalf("expected tracked word count to succeed, got error: %v", err)
	}
	if wordCount != 3 {
		t.Fatalf("expected 3 tracked words, got %d", wordCount)
	}
	if words.calls != 1 {
		t.Fatalf("expected words count to be called once, got %d", words.calls)
	}
}

func TestStatsProviderRequiresContext(t *testing.T) {
	provider := NewStatsProvider(&stubCountCollection{}, &stubCountCollection{})

	if _, err := provider.CountTagGroups(nil); err == nil {
		t.Fatalf("expected error for nil context")
	}
	if _, err := provider.CountTrackedWords(nil); err == nil {
		t.Fatalf("expected error for nil context")
	}
}

func TestStatsProviderRequiresInitialization(t *testing.T) {
	var provider *StatsProvider

	if _, err := provider.CountTagGroups(context.Background()); err == nil {
		t.Fatalf("expected error for nil provider")
	}
	if _, err := provider.CountTrackedWords(context.Background()); err == nil {
		t.Fatalf("expected error for nil provider")
	}
}

func TestStatsProviderPropagatesErrors(t *testing.T) {
	expectedErr := errors.New("count failed")
	provider := NewStatsProvider(
		&stubCountCollection{err: expectedErr},
		&stubCountCollection{err: expectedErr},
	)

	if _, err := provider.CountTagGroups(context.Background()); err == nil {
		t.Fatalf("expected error from tag group count")
	}
	if _, err := provider.CountTrackedWords(context.Background()); err == nil {
		t.Fatalf("expected error from tracked word count")
	}
}

type stubCountCollection struct {
	count int64
	err   error
	calls int
}

func (s *stubCountCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	s.calls++
	return s.count, s.err
}
