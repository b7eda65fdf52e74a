package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/teemow/iris/internal/calendar"
)

// NoUpcomingEvents replaces the event list when the calendar is empty.
const NoUpcomingEvents = "No upcoming events found."

// PromptData feeds BuildSystemPrompt.
type PromptData struct {
	AssistantName string
	UserName      string
	Now           time.Time
	Location      *time.Location
	Events        []calendar.EventSummary
}

// FormatEvents renders events as a bullet list in loc, one per line.
func FormatEvents(events []calendar.EventSummary, loc *time.Location) string {
	if len(events) == 0 {
		return NoUpcomingEvents
	}
	if loc == nil {
		loc = time.Local
	}

	lines := make([]string, 0, len(events))
	for _, ev := range events {
		start := ev.Start.In(loc)
		if ev.AllDay {
			// Date-only events are midnight in their own zone; keep the date as stored.
			lines = append(lines, fmt.Sprintf("• All day on %s: %s", ev.Start.Format("January 02, 2006"), ev.Summary))
			continue
		}
		lines = append(lines, fmt.Sprintf("• %s on %s: %s",
			start.Format("03:04 PM"), start.Format("January 02, 2006"), ev.Summary))
	}
	return strings.Join(lines, "\n")
}

// BuildSystemPrompt returns the instructions sent ahead of the dialogue.
func BuildSystemPrompt(d PromptData) string {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	name := d.AssistantName
	if name == "" {
		name = "IRIS"
	}
	now := d.Now.In(loc)
	_, offset := now.Zone()

	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a personal calendar assistant", name)
	if d.UserName != "" {
		fmt.Fprintf(&b, " for %s", d.UserName)
	}
	b.WriteString(". You manage events in the user's Google Calendar and chat about their schedule.\n\n")

	b.WriteString("Always answer with a single JSON object and nothing else:\n")
	b.WriteString(`{"action": "create" | "update" | "delete" | "list" | "chat", "summary": string, "start_time": string, "end_time": string, "reply": string}` + "\n\n")

	fmt.Fprintf(&b, "TODAY'S DATE: %s (%s, UTC%s)\n\n",
		now.Format("Monday, January 02, 2006 03:04 PM"), loc.String(), formatOffset(offset))

	b.WriteString("UPCOMING EVENTS:\n")
	b.WriteString(FormatEvents(d.Events, loc))
	b.WriteString("\n\n")

	b.WriteString("RULES:\n")
	b.WriteString("- Use \"create\" to add an event. summary, start_time and end_time are required.\n")
	b.WriteString("- Use \"update\" to change the event that was last created or updated. Give the new summary, start_time and end_time.\n")
	b.WriteString("- Use \"delete\" to remove an event. summary must name the event to delete.\n")
	b.WriteString("- Use \"list\" when the user asks about their schedule. Answer from UPCOMING EVENTS in reply.\n")
	b.WriteString("- ONLY mention the actual events shown in UPCOMING EVENTS. Do not make up events.\n")
	b.WriteString("- Use \"chat\" for everything else.\n")
	b.WriteString("- Times are ISO 8601 with offset, for example 2006-01-02T15:04:05")
	b.WriteString(formatOffset(offset))
	b.WriteString(". Resolve relative dates like \"tomorrow\" against TODAY'S DATE.\n")
	b.WriteString("- If a date without a year has already passed this year, use next year. Otherwise use this year.\n")
	b.WriteString("- If no end time is given, make the event one hour long.\n")
	b.WriteString("- Leave unused fields as empty strings.\n")
	b.WriteString("- reply is a short, friendly sentence for the user.\n")
	return b.String()
}

func formatOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	return fmt.Sprintf("%c%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}
