package action

import (
	"fmt"
	"strings"
)

// Kind is the calendar action a model reply asks for.
type Kind string

// Supported action kinds.
const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
	KindList   Kind = "list"
	KindChat   Kind = "chat"
)

// Kinds lists every supported action kind in schema order.
var Kinds = []Kind{KindCreate, KindUpdate, KindDelete, KindList, KindChat}

// String returns the wire form of the kind.
func (k Kind) String() string {
	return string(k)
}

// Mutates reports whether the action changes calendar state.
func (k Kind) Mutates() bool {
	return k == KindCreate || k == KindUpdate || k == KindDelete
}

// Record is the structured form of one model reply.
//
// Start and end times are ISO-8601 strings with a UTC offset. They are passed
// through to the calendar as-is.
type Record struct {
	Action    Kind   `json:"action" yaml:"action"`
	Summary   string `json:"summary" yaml:"summary"`
	StartTime string `json:"start_time" yaml:"start_time"`
	EndTime   string `json:"end_time" yaml:"end_time"`
	Reply     string `json:"reply" yaml:"reply"`
}

// Chat returns a chat-only record carrying reply.
func Chat(reply string) Record {
	return Record{Action: KindChat, Reply: reply}
}

// Validate checks the fields the action kind requires. It does not parse
// times; malformed times are reported by the calendar.
func (r Record) Validate() error {
	switch r.Action {
	case KindCreate, KindUpdate:
		if strings.TrimSpace(r.Summary) == "" {
			return fmt.Errorf("%s requires a summary", r.Action)
		}
		if r.StartTime == "" || r.EndTime == "" {
			return fmt.Errorf("%s requires start_time and end_time", r.Action)
		}
	case KindDelete:
		if strings.TrimSpace(r.Summary) == "" {
			return fmt.Errorf("delete requires a summary")
		}
	case KindList, KindChat:
	default:
		return fmt.Errorf("unknown action %q", r.Action)
	}
	return nil
}
