package telegram

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot"

	"lmbatbot/internal/domain"
	"lmbatbot/internal/feature/tags"
)

// MarkdownV2 helpers. All user-supplied text passes through the library
// escaper so literal formatting characters in usernames, group names, or
// message bodies are never interpreted as formatting.

func mdEscape(text string) string {
	return bot.EscapeMarkdown(text)
}

func mdBold(text string) string {
	return "*" + bot.EscapeMarkdown(text) + "*"
}

func mdItalic(text string) string {
	return "_" + bot.EscapeMarkdown(text) + "_"
}

// formatMention renders the aggregated mention as distinct sections: marker
// prefix with the matched hashtag tokens, the escaped original message body,
// and the recipients re-prefixed with "@".
func formatMention(mention tags.Mention, body string) string {
	sections := []string{
		mdEscape(strings.TrimSpace(mention.Marker + " " + strings.Join(mention.Tags, " "))),
		mdEscape(body),
	}

	if len(mention.Recipients) > 0 {
		handles := make([]string, 0, len(mention.Recipients))
		for _, handle := range mention.Recipients {
			handles = append(handles, "@"+handle)
		}
		sections = append(sections, "", mdItalic(strings.Join(handles, " ")))
	}

	return strings.Join(sections, "\n")
}

// formatTagList renders /taglist output.
func formatTagList(groups []domain.TagGroup) string {
	if len(groups) == 0 {
		return mdBold("No groups found.")
	}

	sections := make([]string, 0, len(groups)+1)
	sections = append(sections, mdBold("Groups:"))
	for _, group := range groups {
		sections = append(sections, mdEscape(fmt.Sprintf("%s %s: %s", group.Emoji, group.Group, strings.Join(group.Members, ", "))))
	}

	return strings.Join(sections, "\n\n")
}

// formatStats renders /stats output, counters already sorted by the tracker.
func formatStats(counters []domain.WordCount) string {
	lines := make([]string, 0, len(counters)+1)
	lines = append(lines, mdBold("Stats:"))
	for _, counter := range counters {
		lines = append(lines, mdEscape(fmt.Sprintf("%s: %d", counter.Word, counter.Count)))
	}

	return strings.Join(lines, "\n")
}
