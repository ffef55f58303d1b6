// Package tags implements the tag group directory and hashtag mention
// resolution.
package tags

import (
	"errors"
	"fmt"
	"strings"
)

// addArgumentCount is the number of newline-separated segments /tagadd takes:
// group name, emoji, member list.
const addArgumentCount = 3

// AddRequest is the parsed form of a /tagadd argument block.
type AddRequest struct {
	Group   string
	Emoji   string
	Members []string
}

// ArgumentCountError reports a wrong number of non-empty argument lines.
type ArgumentCountError struct {
	Expected int
	Found    int
}

func (e *ArgumentCountError) Error() string {
	if e.Found < e.Expected {
		return fmt.Sprintf("too few arguments: expected %d, found %d", e.Expected, e.Found)
	}

	return fmt.Sprintf("too many arguments: expected %d, found %d", e.Expected, e.Found)
}

// ParseAddArgs splits a raw /tagadd argument block on line breaks, discards
// empty lines, and requires exactly three segments: group name, emoji, and a
// space-separated member list. Member order is preserved as supplied.
func ParseAddArgs(raw string) (AddRequest, error) {
	segments := make([]string, 0, addArgumentCount)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		segments = append(segments, line)
	}

	if len(segments) != addArgumentCount {
		return AddRequest{}, &ArgumentCountError{Expected: addArgumentCount, Found: len(segments)}
	}

	members := make([]string, 0)
	for _, token := range strings.Split(segments[2], " ") {
		if token == "" {
			continue
		}
		members = append(members, token)
	}

	return AddRequest{
		Group:   segments[0],
		Emoji:   segments[1],
		Members: members,
	}, nil
}

// ParseDeleteArgs extracts the single group-name token for /tagdelete. Empty
// input is a usage error surfaced to the caller.
func ParseDeleteArgs(raw string) (string, error) {
	group := strings.TrimSpace(raw)
	if group == "" {
		return "", errors.New("group name is required")
	}

	return group, nil
}

// GroupName prefixes the hashtag marker so the name can be matched directly
// against extracted hashtags. Already-prefixed names pass through unchanged.
func GroupName(name string) string {
	if strings.HasPrefix(name, "#") {
		return name
	}

	return "#" + name
}
