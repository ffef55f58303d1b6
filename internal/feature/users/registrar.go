// Package users provides helpers for user registration and lifecycle updates.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lmbatbot/internal/logging"
)

type userCollection interface {
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// Registrar ensures users are present in the database and keeps their latest
// known username and last-seen timestamp updated on every interaction. The
// handle-to-id mapping is what would let mentions move to id-based
// notifications later.
type Registrar struct {
	users  userCollection
	logger *logrus.Entry
}

// NewRegistrar constructs a Registrar for the provided users collection.
func NewRegistrar(users userCollection, logger *logrus.Entry) *Registrar {
	if logger == nil {
		logger = logging.Logger()
	}

	return &Registrar{
		users:  users,
		logger: logger,
	}
}

// EnsureUser upserts the user record and updates username/last_seen_at on
// every call. The username is stored without a leading "@"; an empty username
// leaves the stored value untouched.
func (r *Registrar) EnsureUser(ctx context.Context, userID int64, username string) (bool, error) {
	if r == nil || r.users == nil {
		return false, errors.New("user registrar is not initialized")
	}
	if ctx == nil {
		return false, errors.New("context is required")
	}
	if userID == 0 {
		return false, errors.New("user id is required")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")

	setFields := bson.M{
		"updated_at":   now,
		"last_seen_at": now,
	}
	if username != "" {
		setFields["username"] = username
	}

	update := bson.M{
		"$set": setFields,
		"$setOnInsert": bson.M{
			"user_id":    userID,
			"created_at": now,
		},
	}

	result, err := r.users.UpdateOne(ctx,
		bson.M{"user_id": userID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("ensure user: %w", err)
	}

	created := result != nil && result.UpsertedCount > 0
	if created {
		r.logger.WithFields(logging.Fields{
			"event":    "user_registered",
			"user_id":  userID,
			"username": username,
		}).Info("registered new user")
		return true, nil
	}

	r.logger.WithFields(logging.Fields{
		"event":   "user_seen",
		"user_id": userID,
	}).Debug("updated user last seen")

	return false, nil
}
