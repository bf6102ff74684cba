package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActionKind names the control operation an entry describes.
type ActionKind string

const (
	ActionKill        ActionKind = "kill"
	ActionSetPriority ActionKind = "set_priority"
	ActionRestart     ActionKind = "restart_attempt"
)

// Action is the tagged operation. Value is only meaningful for
// ActionSetPriority.
type Action struct {
	Kind  ActionKind `json:"kind"`
	Value int        `json:"value,omitempty"`
}

// Kill returns the kill action.
func Kill() Action { return Action{Kind: ActionKill} }

// SetPriority returns the set-priority action for nice.
func SetPriority(nice int) Action { return Action{Kind: ActionSetPriority, Value: nice} }

// RestartAttempt returns the restart action.
func RestartAttempt() Action { return Action{Kind: ActionRestart} }

func (a Action) String() string {
	if a.Kind == ActionSetPriority {
		return fmt.Sprintf("%s(%d)", a.Kind, a.Value)
	}
	return string(a.Kind)
}

// Outcome is Success or Failure{Reason}.
type Outcome struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// Succeeded returns the success outcome.
func Succeeded() Outcome { return Outcome{Success: true} }

// Failed returns a failure outcome carrying reason.
func Failed(reason string) Outcome { return Outcome{Reason: reason} }

// OK reports whether the action succeeded.
func (o Outcome) OK() bool { return o.Success }

func (o Outcome) String() string {
	if o.Success {
		return "success"
	}
	return "failure: " + o.Reason
}

// Entry is one audited control action.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	TargetPID int       `json:"target_pid"`
	Outcome   Outcome   `json:"outcome"`
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s pid=%d %s", e.Timestamp.Format(time.RFC3339), e.Action, e.TargetPID, e.Outcome)
}
