package domain

import "time"

// User records a Telegram user the bot has seen, keeping the latest known
// username so handle-based mentions can later be resolved to a user id.
type User struct {
	UserID     int64     `bson:"user_id" json:"user_id"`
	Username   string    `bson:"username,omitempty" json:"username,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
	LastSeenAt time.Time `bson:"last_seen_at" json:"last_seen_at"`
}
