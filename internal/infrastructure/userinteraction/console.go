package userinteraction

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"voice-browser/internal/domain/entity"
	"voice-browser/internal/infrastructure/browser/htmltext"

	"github.com/fatih/color"
)

// Console reads turns line by line and prints responses, either colored for
// people or as one JSON object per line for other programs.
type Console struct {
	reader     *bufio.Reader
	out        io.Writer
	jsonOutput bool
}

func NewConsole(in io.Reader, out io.Writer, jsonOutput bool) *Console {
	return &Console{
		reader:     bufio.NewReader(in),
		out:        out,
		jsonOutput: jsonOutput,
	}
}

func (c *Console) ShowWelcome() {
	if c.jsonOutput {
		return
	}
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Fprintln(c.out, "\n━━━ Voice Browser ━━━")
	dim := color.New(color.Faint)
	dim.Fprintln(c.out, "Type a website address or say what you're looking for. Say \"exit\" to leave.")
}

// ReadTurn prompts and returns the next non-empty line. io.EOF ends the session.
func (c *Console) ReadTurn() (string, error) {
	for {
		if !c.jsonOutput {
			color.New(color.FgYellow, color.Bold).Fprint(c.out, "\n🎤 > ")
		}
		line, err := c.reader.ReadString('\n')
		line = strings.TrimSpace(line)
		if line != "" {
			return line, nil
		}
		if err != nil {
			if err == io.EOF {
				return "", io.EOF
			}
			return "", fmt.Errorf("failed to read user input: %w", err)
		}
	}
}

func (c *Console) ShowThinking(utterance string) {
	if c.jsonOutput {
		return
	}
	dim := color.New(color.Faint)
	dim.Fprintf(c.out, "💭 %s\n", truncate(utterance, 80))
}

func (c *Console) ShowTurn(turn entity.Turn) error {
	if c.jsonOutput {
		data, err := json.Marshal(turn.ToResponse())
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		_, err = fmt.Fprintln(c.out, string(data))
		return err
	}

	if turn.URL != nil {
		blue := color.New(color.FgBlue)
		blue.Fprintf(c.out, "🌐 %s\n", *turn.URL)
	}
	green := color.New(color.FgGreen)
	green.Fprintln(c.out, turn.Response)
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return htmltext.Truncate(s, maxLen) + "..."
}
