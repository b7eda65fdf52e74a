package conversation

import (
	"github.com/teemow/iris/internal/action"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in the dialogue log.
type Turn struct {
	Role    Role   `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// UserTurn returns a user turn.
func UserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// AssistantTurn returns an assistant turn.
func AssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// State is the persisted form of a conversation. The key names match the
// transcript files written by earlier versions of the assistant.
type State struct {
	Turns      []Turn         `json:"conversation" yaml:"conversation"`
	LastAction *action.Record `json:"last_event" yaml:"last_event"`
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{Turns: make([]Turn, len(s.Turns))}
	copy(out.Turns, s.Turns)
	if s.LastAction != nil {
		rec := *s.LastAction
		out.LastAction = &rec
	}
	return out
}
