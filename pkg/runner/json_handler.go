package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Each committed frame is one line; each input line is a Command object or,
// as a convenience, the text form accepted by ParseCommand.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

type jsonLine struct {
	Type  string `json:"type"`
	Frame *Frame `json:"frame,omitempty"`
	Msg   string `json:"message,omitempty"`
}

// Output emits the frame as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, frame Frame) error {
	return h.Encoder.Encode(jsonLine{Type: "frame", Frame: &frame})
}

// Input reads one line and decodes it.
func (h *JSONHandler) Input(ctx context.Context) (Command, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Command{}, err
		}
		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text == "" {
			if err != nil {
				return Command{}, err
			}
			continue
		}

		clean, sanitizeErr := SanitizeInput(text)
		if sanitizeErr != nil {
			return Command{}, sanitizeErr
		}

		if strings.HasPrefix(clean, "{") {
			var cmd Command
			if decodeErr := json.Unmarshal([]byte(clean), &cmd); decodeErr != nil {
				return Command{}, fmt.Errorf("invalid command: %w", decodeErr)
			}
			return cmd, nil
		}
		// Fallback: plain text command
		return ParseCommand(clean)
	}
}

// SystemOutput emits a message line.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(jsonLine{Type: "system", Msg: msg})
}
