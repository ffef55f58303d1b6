package domain

// WordCount tracks how many times a configured word has been seen in a chat.
// The (chat_id, word) pair is unique; Word is stored lowercase.
type WordCount struct {
	ChatID int64  `bson:"chat_id" json:"chat_id"`
	Word   string `bson:"word" json:"word"`
	Count  int64  `bson:"count" json:"count"`
}
