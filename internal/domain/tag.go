package domain

// TagGroup is a chat-scoped alias mapping a "#"-prefixed group name to a
// decorative emoji and a set of member handles. The (chat_id, group) pair is
// unique; Members holds bare handles without a leading "@".
type TagGroup struct {
	ChatID  int64    `bson:"chat_id" json:"chat_id"`
	Group   string   `bson:"group" json:"group"`
	Emoji   string   `bson:"emoji" json:"emoji"`
	Members []string `bson:"members" json:"members"`
}
