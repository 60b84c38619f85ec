package domain

import (
	"fmt"
	"time"
)

// EffectTag classifies what the committer must do for a fiber.
type EffectTag uint8

const (
	EffectNone EffectTag = iota
	EffectPlacement
	EffectUpdate
	EffectDeletion
)

func (t EffectTag) String() string {
	switch t {
	case EffectNone:
		return "NONE"
	case EffectPlacement:
		return "PLACEMENT"
	case EffectUpdate:
		return "UPDATE"
	case EffectDeletion:
		return "DELETION"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets effect tags serialize by name.
func (t EffectTag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a name written by MarshalText.
func (t *EffectTag) UnmarshalText(text []byte) error {
	switch string(text) {
	case "NONE":
		*t = EffectNone
	case "PLACEMENT":
		*t = EffectPlacement
	case "UPDATE":
		*t = EffectUpdate
	case "DELETION":
		*t = EffectDeletion
	default:
		return fmt.Errorf("unknown effect tag %q", text)
	}
	return nil
}

// Effect describes one host mutation applied by a commit.
type Effect struct {
	Tag  EffectTag `json:"tag"`
	Kind string    `json:"kind"`
	// Path locates the fiber from the root, e.g. "div[0]/ul[1]/li[2]".
	Path string `json:"path"`
	// Changed lists the attributes written by an UPDATE. Empty for a no-op update.
	Changed []string `json:"changed,omitempty"`
}

// CommitReport summarizes a successful commit.
type CommitReport struct {
	Pass      uint64        `json:"pass"`
	Effects   []Effect      `json:"effects"`
	Deletions int           `json:"deletions"`
	Units     int           `json:"units"`
	Duration  time.Duration `json:"duration"`
}

// Count returns the number of effects with the given tag.
func (r CommitReport) Count(tag EffectTag) int {
	n := 0
	for _, e := range r.Effects {
		if e.Tag == tag {
			n++
		}
	}
	return n
}

// Patched returns the number of UPDATE effects that actually changed attributes.
func (r CommitReport) Patched() int {
	n := 0
	for _, e := range r.Effects {
		if e.Tag == EffectUpdate && len(e.Changed) > 0 {
			n++
		}
	}
	return n
}

// Status is returned by a scheduler slice.
type Status uint8

const (
	// StatusIdle means no work unit is outstanding and nothing awaits commit.
	StatusIdle Status = iota
	// StatusMoreWork means the slice ran out of budget with work remaining.
	StatusMoreWork
)

func (s Status) String() string {
	if s == StatusMoreWork {
		return "MORE_WORK"
	}
	return "IDLE"
}
