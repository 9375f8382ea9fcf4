package views

import (
	"strings"

	"ai-agent-character-demo/client/internal/models"
)

// FilterCharacters keeps characters whose name, description or profession
// contains query, ignoring case. A blank query keeps everything.
func FilterCharacters(chars []models.Character, query string) []models.Character {
	if strings.TrimSpace(query) == "" {
		return chars
	}
	q := strings.ToLower(query)

	out := make([]models.Character, 0, len(chars))
	for _, c := range chars {
		if contains(c.Name, q) ||
			contains(models.StringValue(c.Description), q) ||
			contains(models.StringValue(c.Profession), q) {
			out = append(out, c)
		}
	}
	return out
}

// FilterConversations keeps conversations whose character name or last
// message contains query, ignoring case
func FilterConversations(convs []models.Conversation, query string) []models.Conversation {
	if strings.TrimSpace(query) == "" {
		return convs
	}
	q := strings.ToLower(query)

	out := make([]models.Conversation, 0, len(convs))
	for _, c := range convs {
		if contains(c.Character.Name, q) ||
			(c.LastMessage != nil && contains(c.LastMessage.Content, q)) {
			out = append(out, c)
		}
	}
	return out
}

func contains(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}
