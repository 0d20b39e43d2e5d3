package intent

import (
	"context"
	"errors"
	"testing"

	"voice-browser/internal/domain/entity"
	"voice-browser/internal/infrastructure/logger/loggertest"
	"voice-browser/internal/infrastructure/prompts"
	"voice-browser/internal/usecase/fakes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var labels = []string{"Products", "About Us", "Contact"}

func failing() *fakes.Completer {
	return &fakes.Completer{DefaultErr: errors.New("service unavailable")}
}

func classifying(kind, option string) *fakes.Completer {
	return &fakes.Completer{Rules: []fakes.Rule{
		{Contains: "Classify what they want", Reply: kind},
		{Contains: "Which option (if any)", Reply: option},
	}}
}

func TestResolve_KeywordsNeverCallService(t *testing.T) {
	tests := []struct {
		utterance string
		want      entity.IntentKind
	}{
		{"exit", entity.IntentExit},
		{"Quit", entity.IntentExit},
		{"ok bye!", entity.IntentExit},
		{"goodbye", entity.IntentExit},
		{"q", entity.IntentExit},
		{"please stop", entity.IntentExit},
		{"go back", entity.IntentBack},
		{"BACK", entity.IntentBack},
		{"previous page please", entity.IntentBack},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			c := failing()
			got := Resolve(context.Background(), c, tt.utterance, labels)
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, 0, c.Calls())
		})
	}
}

func TestResolve_KeywordsAreWholeWords(t *testing.T) {
	c := classifying("INFO_REQUEST", "none")

	for _, u := range []string{"what is the backpack price", "tell me about the quiz", "does it have a stopwatch"} {
		got := Resolve(context.Background(), c, u, labels)
		assert.Equal(t, entity.IntentInfoRequest, got.Kind, u)
	}
}

func TestResolve_ServiceFailureIsNone(t *testing.T) {
	got := Resolve(context.Background(), failing(), "show me products", labels)

	assert.Equal(t, entity.IntentNone, got.Kind)
}

func TestResolve_Classification(t *testing.T) {
	tests := []struct {
		reply string
		want  entity.IntentKind
	}{
		{"INFO_REQUEST", entity.IntentInfoRequest},
		{"  bookmark\n", entity.IntentBookmark},
		{"LIST_BOOKMARKS", entity.IntentListBookmarks},
		{"go to bookmark", entity.IntentGoToBookmark},
		{"Category: SWITCH_WEBSITE.", entity.IntentSwitchWebsite},
		{"NONE", entity.IntentNone},
		{"EXIT", entity.IntentNone},
		{"BACK", entity.IntentNone},
		{"I think it could be BOOKMARK or LIST_BOOKMARKS", entity.IntentNone},
		{"BOOKMARK or LIST_BOOKMARKS", entity.IntentNone},
		{"This is not NAVIGATION.", entity.IntentNone},
		{"Definitely not BOOKMARK", entity.IntentNone},
		{"I can't classify; maybe INFO_REQUEST?", entity.IntentNone},
		{"NAVIGATION? hard to say", entity.IntentNone},
		{"BOOKMARK - the user wants to save this page", entity.IntentBookmark},
		{"Intent: list bookmarks", entity.IntentListBookmarks},
		{"INFO_REQUEST\nThe user asks about prices.", entity.IntentInfoRequest},
		{"banana", entity.IntentNone},
		{"", entity.IntentNone},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got := Resolve(context.Background(), classifying(tt.reply, "none"), "some request", labels)
			assert.Equal(t, tt.want, got.Kind)
		})
	}
}

func TestResolve_Navigation(t *testing.T) {
	tests := []struct {
		name   string
		option string
		want   entity.Intent
	}{
		{"exact", "About Us", entity.NavigateTo("About Us")},
		{"quoted", `"Contact"`, entity.NavigateTo("Contact")},
		{"case differs", "products", entity.NavigateTo("Products")},
		{"none", "none", entity.NewIntent(entity.IntentNone)},
		{"out of set", "Careers", entity.NewIntent(entity.IntentNone)},
		{"partial", "About", entity.NewIntent(entity.IntentNone)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(context.Background(), classifying("NAVIGATION", tt.option), "take me there", labels)
			assert.Equal(t, tt.want, got)
			if got.Kind == entity.IntentNavigation {
				assert.Contains(t, labels, got.Label)
			}
		})
	}
}

func TestResolve_NavigationWithoutLabels(t *testing.T) {
	c := classifying("NAVIGATION", "Products")

	got := Resolve(context.Background(), c, "products", nil)

	assert.Equal(t, entity.IntentNone, got.Kind)
	assert.Equal(t, 1, c.Calls())
}

func TestResolve_SecondCallFailure(t *testing.T) {
	c := &fakes.Completer{Rules: []fakes.Rule{
		{Contains: "Classify what they want", Reply: "NAVIGATION"},
		{Contains: "Which option (if any)", Err: errors.New("timeout")},
	}}

	got := Resolve(context.Background(), c, "contact", labels)

	assert.Equal(t, entity.IntentNone, got.Kind)
}

func TestResolver_PromptsCarryLabels(t *testing.T) {
	c := classifying("NAVIGATION", "Contact")
	r := NewResolver(c, prompts.Default(), loggertest.New(t))

	r.Resolve(context.Background(), "how do I reach you", labels)

	ps := c.Prompts()
	require.Len(t, ps, 2)
	assert.Contains(t, ps[0], "Products, About Us, Contact")
	assert.Contains(t, ps[0], `"how do I reach you"`)
	assert.Contains(t, ps[1], `"Products", "About Us", "Contact"`)
}

func TestMatchOption(t *testing.T) {
	opt, ok := MatchOption(" 'About Us' ", labels)
	assert.True(t, ok)
	assert.Equal(t, "About Us", opt)

	_, ok = MatchOption("NONE", labels)
	assert.False(t, ok)
}

func TestKeyword(t *testing.T) {
	in, ok := Keyword("go back and then quit")
	assert.True(t, ok)
	assert.Equal(t, entity.IntentExit, in.Kind)

	_, ok = Keyword("show me products")
	assert.False(t, ok)
}
