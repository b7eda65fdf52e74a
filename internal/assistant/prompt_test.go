package assistant

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/teemow/iris/internal/calendar"
)

func TestFormatEvents(t *testing.T) {
	events := []calendar.EventSummary{
		{Summary: "Lunch with Sam", Start: time.Date(2025, 9, 2, 18, 30, 0, 0, time.UTC)},
		{Summary: "Holiday", Start: at(0, 0, 5), AllDay: true},
	}

	got := FormatEvents(events, edmonton)
	want := "• 12:30 PM on September 02, 2025: Lunch with Sam\n" +
		"• All day on September 05, 2025: Holiday"
	assert.Equal(t, want, got)
}

func TestFormatEvents_Empty(t *testing.T) {
	assert.Equal(t, "No upcoming events found.", FormatEvents(nil, edmonton))
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt(PromptData{
		AssistantName: "Iris",
		UserName:      "Robin",
		Now:           at(9, 0, 1),
		Location:      edmonton,
		Events: []calendar.EventSummary{
			{Summary: "Dentist", Start: at(15, 0, 4)},
		},
	})

	assert.True(t, strings.HasPrefix(prompt, "You are Iris, a personal calendar assistant for Robin."))
	assert.Contains(t, prompt, "TODAY'S DATE: Monday, September 01, 2025 09:00 AM (America/Edmonton, UTC-06:00)")
	assert.Contains(t, prompt, "UPCOMING EVENTS:\n• 03:00 PM on September 04, 2025: Dentist\n")
	assert.Contains(t, prompt, `"action": "create" | "update" | "delete" | "list" | "chat"`)
	assert.Contains(t, prompt, "2006-01-02T15:04:05-06:00")
	assert.Contains(t, prompt, "ONLY mention the actual events shown in UPCOMING EVENTS. Do not make up events.")
	assert.Contains(t, prompt, "already passed this year, use next year")
}

func TestBuildSystemPrompt_Defaults(t *testing.T) {
	prompt := BuildSystemPrompt(PromptData{Now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Location: time.UTC})

	assert.True(t, strings.HasPrefix(prompt, "You are IRIS, a personal calendar assistant."))
	assert.Contains(t, prompt, "UTC+00:00")
	assert.Contains(t, prompt, NoUpcomingEvents)
}
