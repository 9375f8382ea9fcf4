// Package views holds the presentation logic shared by the front ends:
// search filters, date grouping and labels, and the chat thread model.
package views

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"ai-agent-character-demo/client/internal/models"
)

const (
	TimeLayout     = "3:04 PM"
	DayLayout      = "January 2, 2006"
	ShortDayLayout = "Jan 2, 2006"

	placeholderImage = "https://via.placeholder.com/150?text="
)

// FormatConversationTime labels a conversation timestamp: the clock time
// when it is today, a relative phrase within the last week, and the date
// otherwise. t is shown in now's location.
func FormatConversationTime(t, now time.Time) string {
	t = t.In(now.Location())
	if sameDay(t, now) {
		return t.Format(TimeLayout)
	}
	if now.Sub(t) < 7*24*time.Hour {
		return RelativeTime(t, now)
	}
	return t.Format(ShortDayLayout)
}

// RelativeTime describes the distance between t and now, e.g. "about 2 hours ago"
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	future := d < 0
	if future {
		d = -d
	}

	phrase := distance(d)
	if future {
		return "in " + phrase
	}
	return phrase + " ago"
}

func distance(d time.Duration) string {
	minutes := int(math.Round(d.Minutes()))
	switch {
	case d < 30*time.Second:
		return "less than a minute"
	case minutes <= 1:
		return "1 minute"
	case minutes < 45:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes < 90:
		return "about 1 hour"
	case minutes < 24*60:
		return fmt.Sprintf("about %d hours", int(math.Round(d.Hours())))
	case minutes < 42*60:
		return "1 day"
	case minutes < 30*24*60:
		return fmt.Sprintf("%d days", int(math.Round(d.Hours()/24)))
	default:
		months := int(math.Round(d.Hours() / 24 / 30))
		if months <= 1 {
			return "about 1 month"
		}
		return fmt.Sprintf("%d months", months)
	}
}

// Initials takes the first letter of every word, upper-cased
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Split(name, " ") {
		r, size := utf8.DecodeRuneInString(word)
		if size == 0 {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// CharacterImage returns the character's image or a placeholder showing its initial
func CharacterImage(c models.Character) string {
	if img := models.StringValue(c.ImageURL); img != "" {
		return img
	}
	r, size := utf8.DecodeRuneInString(c.Name)
	if size == 0 {
		return placeholderImage
	}
	return placeholderImage + url.QueryEscape(string(r))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
