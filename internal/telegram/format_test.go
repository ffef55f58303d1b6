package telegram

import (
	"strings"
	"testing"

	"lmbatbot/internal/domain"
	"lmbatbot/internal/feature/tags"
)

func TestFormatMentionIncludesMarkerBodyAndRecipients(t *testing.T) {
	mention := tags.Mention{
		Marker:     "🔥🚀",
		Recipients: []string{"alice", "bob"},
		Tags:       []string{"#dev", "#ops"},
	}

	rendered := formatMention(mention, "deploy ready #dev #ops")

	lines := strings.Split(rendered, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), rendered)
	}
	if !strings.HasPrefix(lines[0], "🔥🚀") {
		t.Fatalf("expected marker prefix, got %q", lines[0])
	}
	if !strings.Contains(lines[0], "dev") || !strings.Contains(lines[0], "ops") {
		t.Fatalf("expected matched tags echoed on the first line, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "deploy ready") {
		t.Fatalf("expected message body, got %q", lines[1])
	}
	if lines[2] != "" {
		t.Fatalf("expected blank separator before recipients, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "@alice @bob") {
		t.Fatalf("expected recipient handles, got %q", lines[3])
	}
}

func TestFormatMentionOmitsEmptyRecipients(t *testing.T) {
	mention := tags.Mention{Marker: "🔥", Tags: []string{"#dev"}}

	rendered := formatMention(mention, "solo ping #dev")

	if strings.Contains(rendered, "@") {
		t.Fatalf("expected no recipient line, got %q", rendered)
	}
	if len(strings.Split(rendered, "\n")) != 2 {
		t.Fatalf("expected marker and body lines only, got %q", rendered)
	}
}

func TestFormatMentionEscapesFormattingCharacters(t *testing.T) {
	mention := tags.Mention{Marker: "🔥", Recipients: []string{"under_score"}, Tags: []string{"#dev"}}

	rendered := formatMention(mention, "watch *this* #dev")

	if !strings.Contains(rendered, `\*this\*`) {
		t.Fatalf("expected body asterisks escaped, got %q", rendered)
	}
	if !strings.Contains(rendered, `under\_score`) {
		t.Fatalf("expected recipient underscore escaped, got %q", rendered)
	}
}

func TestFormatTagListRendersEachGroup(t *testing.T) {
	groups := []domain.TagGroup{
		{Group: "#dev", Emoji: "🔥", Members: []string{"alice", "bob"}},
		{Group: "#ops", Emoji: "🚀", Members: []string{"carol"}},
	}

	rendered := formatTagList(groups)

	if !strings.HasPrefix(rendered, "*Groups:*") {
		t.Fatalf("expected bold heading, got %q", rendered)
	}
	for _, want := range []string{"🔥", "dev", "alice, bob", "🚀", "ops", "carol"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("expected %q in tag list, got %q", want, rendered)
		}
	}
}

func TestFormatTagListEmpty(t *testing.T) {
	if got := formatTagList(nil); got != "*No groups found\\.*" {
		t.Fatalf("unexpected empty tag list rendering: %q", got)
	}
}

func TestFormatStatsRendersCounters(t *testing.T) {
	counters := []domain.WordCount{
		{Word: "hello", Count: 9},
		{Word: "bye", Count: 2},
	}

	rendered := formatStats(counters)

	if !strings.HasPrefix(rendered, "*Stats:*") {
		t.Fatalf("expected bold heading, got %q", rendered)
	}
	if !strings.Contains(rendered, "hello: 9") || !strings.Contains(rendered, "bye: 2") {
		t.Fatalf("expected counter lines, got %q", rendered)
	}
}
