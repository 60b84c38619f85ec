package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Frame is what a handler presents after each commit.
type Frame struct {
	Pass     uint64              `json:"pass"`
	Snapshot *domain.Snapshot    `json:"tree"`
	Report   domain.CommitReport `json:"report"`
}

// Command is one user request read by a handler: deliver Event to the node
// whose "id" attribute is Target.
type Command struct {
	Event   string `json:"event"`
	Target  string `json:"target"`
	Payload any    `json:"payload,omitempty"`
	Quit    bool   `json:"quit,omitempty"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents a committed frame.
	Output(ctx context.Context, frame Frame) error

	// Input reads the next command from the user.
	Input(ctx context.Context) (Command, error)

	// SystemOutput presents a meta-message to the user (e.g. errors, status updates).
	// This is distinct from content rendering.
	SystemOutput(ctx context.Context, msg string) error
}

// ParseCommand reads the text form of a command:
//
//	click inc             -> {Event: "click", Target: "inc"}
//	input name Ada Lovelace -> {Event: "input", Target: "name", Payload: "Ada Lovelace"}
//	quit | exit           -> {Quit: true}
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}
	switch fields[0] {
	case "quit", "exit":
		return Command{Quit: true}, nil
	}
	if len(fields) < 2 {
		return Command{}, fmt.Errorf("usage: <event> <target-id> [payload]")
	}
	cmd := Command{Event: fields[0], Target: fields[1]}
	if len(fields) > 2 {
		// Keep the payload as typed, including inner spacing.
		rest := strings.TrimSpace(line)
		rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[0]))
		rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[1]))
		cmd.Payload = rest
	}
	return cmd, nil
}
