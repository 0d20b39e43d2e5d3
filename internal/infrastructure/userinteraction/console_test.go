package userinteraction

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"unicode/utf8"

	"voice-browser/internal/domain/entity"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestConsole_ReadTurnSkipsBlankLines(t *testing.T) {
	c := NewConsole(strings.NewReader("\n   \nhttps://example.com\nexit"), io.Discard, false)

	first, err := c.ReadTurn()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", first)

	second, err := c.ReadTurn()
	require.NoError(t, err)
	assert.Equal(t, "exit", second)

	_, err = c.ReadTurn()
	assert.ErrorIs(t, err, io.EOF)
}

func TestConsole_ShowTurnJSON(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out, true)
	url := "https://example.com"

	require.NoError(t, c.ShowTurn(entity.Turn{Response: "Home summary.", URL: &url}))
	require.NoError(t, c.ShowTurn(entity.Turn{Response: "Goodbye."}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"summary":"Home summary.","url":"https://example.com"}`, lines[0])
	assert.JSONEq(t, `{"summary":"Goodbye.","url":null}`, lines[1])
}

func TestConsole_ShowTurnText(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out, false)
	url := "https://example.com"

	require.NoError(t, c.ShowTurn(entity.Turn{Response: "Home summary.", URL: &url}))

	assert.Contains(t, out.String(), "https://example.com")
	assert.Contains(t, out.String(), "Home summary.")
}

func TestConsole_ShowThinkingKeepsRunesWhole(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(strings.NewReader(""), &out, false)

	// 79 ASCII bytes then a two-byte rune straddling the 80-byte cut
	c.ShowThinking(strings.Repeat("a", 79) + "éé tail")

	assert.True(t, utf8.ValidString(out.String()))
	assert.Contains(t, out.String(), strings.Repeat("a", 79)+"...")
}
