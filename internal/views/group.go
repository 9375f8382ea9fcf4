package views

import (
	"time"

	"ai-agent-character-demo/client/internal/models"
)

// MessageView is a message with its display time
type MessageView struct {
	models.Message
	Time string `json:"time"`
}

// DayGroup is a run of consecutive messages sent on the same calendar day
type DayGroup struct {
	Label    string        `json:"label"`
	Messages []MessageView `json:"messages"`
}

// GroupMessagesByDay starts a new group whenever a message falls on a
// different day from the one before it. Message order is kept as given.
func GroupMessagesByDay(messages []models.Message, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}

	var groups []DayGroup
	var prev time.Time
	for i, m := range messages {
		at := m.CreatedAt.In(loc)
		if i == 0 || !sameDay(at, prev) {
			groups = append(groups, DayGroup{Label: at.Format(DayLayout)})
		}
		last := &groups[len(groups)-1]
		last.Messages = append(last.Messages, MessageView{Message: m, Time: at.Format(TimeLayout)})
		prev = at
	}
	return groups
}
