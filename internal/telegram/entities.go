package telegram

import (
	"errors"
	"fmt"
	"unicode/utf16"

	"github.com/go-telegram/bot/models"
)

// hasHashtags reports whether any entity marks a hashtag span.
func hasHashtags(entities []models.MessageEntity) bool {
	for _, entity := range entities {
		if entity.Type == models.MessageEntityTypeHashtag {
			return true
		}
	}

	return false
}

// extractHashtags returns the distinct hashtag tokens present in the message,
// marker included, in the order they appear. Telegram entity offsets count
// UTF-16 code units, so the text is sliced through a UTF-16 encoding. A span
// outside the text is a precondition violation for this message.
func extractHashtags(text string, entities []models.MessageEntity) ([]string, error) {
	if len(entities) == 0 {
		return nil, errors.New("message has no entity metadata")
	}

	encoded := utf16.Encode([]rune(text))

	hashtags := make([]string, 0, len(entities))
	seen := make(map[string]struct{}, len(entities))
	for _, entity := range entities {
		if entity.Type != models.MessageEntityTypeHashtag {
			continue
		}

		if entity.Offset < 0 || entity.Length <= 0 || entity.Offset+entity.Length > len(encoded) {
			return nil, fmt.Errorf("hashtag entity span [%d, %d) outside message text", entity.Offset, entity.Offset+entity.Length)
		}

		token := string(utf16.Decode(encoded[entity.Offset : entity.Offset+entity.Length]))
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		hashtags = append(hashtags, token)
	}

	if len(hashtags) == 0 {
		return nil, errors.New("message has no hashtag entities")
	}

	return hashtags, nil
}
