package chats

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestEnsureChatCreatesNewRecord(t *testing.T) {
	hookLogger, _ := logtest.NewNullLogger()
	coll := newFakeChatCollection(t)
	registrar := NewRegistrar(coll, logrus.NewEntry(hookLogger))

	ctx := context.Background()
	created, err := registrar.EnsureChat(ctx, -100200, " Test Group ")
	if err != nil {
		t.Fatalf("EnsureChat returned error: %v", err)
	}
	if !created {
		t.Fatalf("expected created to be true for new chat")
	}

	doc := coll.docFor(t, -100200)

	assertFieldEquals(t, doc, "chat_id", int64(-100200))
	assertFieldEquals(t, doc, "title", "Test Group")

	joinedAt := assertTimeField(t, doc, "joined_at")
	lastSeen := assertTimeField(t, doc, "last_seen_at")

	if !joinedAt.Equal(lastSeen) {
		t.Fatalf("expected joined_at and last_seen_at to match on insert, got %v and %v", joinedAt, lastSeen)
	}
}

func TestEnsureChatUpdatesLastSeenAndTitle(t *testing.T) {
	hookLogger, _ := logtest.NewNullLogger()
	coll := newFakeChatCollection(t)

	joinedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	initialLastSeen := joinedAt.Add(time.Hour)

	coll.seed(t, bson.M{
		"chat_id":      int64(-200300),
		"title":        "Old Title",
		"joined_at":    joinedAt,
		"last_seen_at": initialLastSeen,
	})

	registrar := NewRegistrar(coll, logrus.NewEntry(hookLogger))

	ctx := context.Background()
	created, err := registrar.EnsureChat(ctx, -200300, "Updated Title")
	if err != nil {
		t.Fatalf("EnsureChat returned error: %v", err)
	}
	if created {
		t.Fatalf("expected created=false for existing chat")
	}

	doc := coll.docFor(t, -200300)

	assertFieldEquals(t, doc, "chat_id", int64(-200300))
	assertFieldEquals(t, doc, "title", "Updated Title")
	assertFieldEquals(t, doc, "joined_at", joinedAt)

	lastSeen := assertTimeField(t, doc, "last_seen_at")
	if !lastSeen.After(initialLastSeen) {
		t.Fatalf("expected last_seen_at to advance beyond %v, got %v", initialLastSeen, lastSeen)
	}
}

func TestEnsureChatValidatesInput(t *testing.T) {
	hookLogger, _ := logtest.NewNullLogger()
	registrar := NewRegistrar(newFakeChatCollection(t), logrus.NewEntry(hookLogger))

	if _, err := registrar.EnsureChat(nil, -1, "t"); err == nil {
		t.Fatalf("expected error for nil context")
	}
	if _, err := registrar.EnsureChat(context.Background(), 0, "t"); err == nil {
		t.Fatalf("expected error for zero chat id")
	}
}

type fakeChatCollection struct {
	t    *testing.T
	docs map[int64]bson.M
}

func newFakeChatCollection(t *testing.T) *fakeChatCollection {
	t.Helper()
	return &fakeChatCollection{
		t:    t,
		docs: make(map[int64]bson.M),
	}
}

func (f *fakeChatCollection) UpdateOne(_ context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	filterDoc, ok := filter.(bson.M)
	if !ok {
		f.t.Fatalf("unexpected filter type %T", filter)
	}

	chatID := filterDoc["chat_id"].(int64)

	updateDoc, ok := update.(bson.M)
	if !ok {
		f.t.Fatalf("unexpected update type %T", update)
	}

	setDoc, _ := updateDoc["$set"].(bson.M)
	setOnInsertDoc, _ := updateDoc["$setOnInsert"].(bson.M)

	upsert := len(opts) > 0 && opts[0] != nil && opts[0].Upsert != nil && *opts[0].Upsert

	doc, found := f.docs[chatID]
	if !found && !upsert {
		return &mongo.UpdateResult{}, nil
	}
	if !found {
		doc = bson.M{}
		merge(doc, setOnInsertDoc)
	}

	merge(doc, setDoc)
	f.docs[chatID] = doc

	result := &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}
	if !found {
		result.MatchedCount = 0
		result.UpsertedCount = 1
		result.UpsertedID = chatID
	}

	return result, nil
}

func (f *fakeChatCollection) docFor(t *testing.T, chatID int64) bson.M {
	t.Helper()

	doc, ok := f.docs[chatID]
	if !ok {
		t.Fatalf("no document stored for chat_id=%d", chatID)
	}

	return doc
}

func (f *fakeChatCollection) seed(t *testing.T, doc bson.M) {
	t.Helper()

	idVal, ok := doc["chat_id"]
	if !ok {
		t.Fatalf("seed document missing chat_id: %v", doc)
	}

	f.docs[idVal.(int64)] = doc
}

func merge(dst bson.M, updates bson.M) {
	for k, v := range updates {
		dst[k] = v
	}
}

func assertFieldEquals(t *testing.T, doc bson.M, field string, expected interface{}) {
	t.Helper()

	val, ok := doc[field]
	if !ok {
		t.Fatalf("expected field %s to be set", field)
	}

	if val != expected {
		t.Fatalf("expected %s=%v, got %v", field, expected, val)
	}
}

func assertTimeField(t *testing.T, doc bson.M, field string) time.Time {
	t.Helper()

	val, ok := doc[field]
	if !ok {
		t.Fatalf("expected field %s to be set", field)
	}

	ts, ok := val.(time.Time)
	if !ok {
		t.Fatalf("expected field %s to be time.Time, got %T", field, val)
	}

	if ts.IsZero() {
		t.Fatalf("expected field %s to be non-zero", field)
	}

	return ts
}
