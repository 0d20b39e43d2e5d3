package intent

import (
	"context"
	"slices"
	"strings"
	"unicode"

	"voice-browser/internal/application/port/output"
	"voice-browser/internal/domain/entity"
	"voice-browser/internal/infrastructure/logger"
	"voice-browser/internal/infrastructure/prompts"
)

var (
	answerPrefixes = []string{"CATEGORY:", "INTENT:", "ANSWER:"}
	leadSeparators = ".:;,-–("

	exitWords = wordSet("quit", "exit", "bye", "goodbye", "q", "stop", "end")
	backWords = wordSet("back", "previous")
)

type Resolver struct {
	completer output.TextCompleter
	prompts   *prompts.Library
	logger    output.LoggerPort
}

func NewResolver(completer output.TextCompleter, library *prompts.Library, logger output.LoggerPort) *Resolver {
	return &Resolver{
		completer: completer,
		prompts:   library,
		logger:    logger,
	}
}

// Resolve classifies utterance with the shipped prompts and no logging.
func Resolve(ctx context.Context, completer output.TextCompleter, utterance string, labels []string) entity.Intent {
	return NewResolver(completer, prompts.Default(), logger.NewNoOpLogger()).Resolve(ctx, utterance, labels)
}

// Resolve maps an utterance to an intent. EXIT and BACK are keyword matches and
// never reach the completer. Completer errors and unusable output resolve to NONE.
func (r *Resolver) Resolve(ctx context.Context, utterance string, labels []string) entity.Intent {
	if in, ok := Keyword(utterance); ok {
		return in
	}

	kind := r.classify(ctx, utterance, labels)
	if kind != entity.IntentNavigation {
		return entity.NewIntent(kind)
	}

	label, ok := r.matchLabel(ctx, utterance, labels)
	if !ok {
		return entity.NewIntent(entity.IntentNone)
	}
	return entity.NavigateTo(label)
}

// Keyword matches the fixed exit and back words. Exit wins when both appear.
func Keyword(utterance string) (entity.Intent, bool) {
	words := tokenize(utterance)
	if containsAny(words, exitWords) {
		return entity.NewIntent(entity.IntentExit), true
	}
	if containsAny(words, backWords) {
		return entity.NewIntent(entity.IntentBack), true
	}
	return entity.Intent{}, false
}

func (r *Resolver) classify(ctx context.Context, utterance string, labels []string) entity.IntentKind {
	reply, ok := r.complete(ctx, prompts.IntentClassify, map[string]any{
		"Utterance": utterance,
		"Labels":    labels,
	})
	if !ok {
		return entity.IntentNone
	}

	kind, ok := ParseKind(reply)
	if !ok {
		r.logger.Debug("Unrecognized intent label", "reply", reply)
		return entity.IntentNone
	}
	return kind
}

func (r *Resolver) matchLabel(ctx context.Context, utterance string, labels []string) (string, bool) {
	if len(labels) == 0 {
		return "", false
	}
	reply, ok := r.complete(ctx, prompts.IntentNavigation, map[string]any{
		"Utterance": utterance,
		"Labels":    labels,
	})
	if !ok {
		return "", false
	}
	return MatchOption(reply, labels)
}

func (r *Resolver) complete(ctx context.Context, name string, data map[string]any) (string, bool) {
	prompt, err := r.prompts.Render(name, data)
	if err != nil {
		r.logger.Error("Prompt render failed", "prompt", name, "error", err)
		return "", false
	}
	reply, err := r.completer.Generate(ctx, prompt)
	if err != nil {
		r.logger.Warn("Intent completion failed", "prompt", name, "error", err)
		return "", false
	}
	return reply, true
}

// ParseKind reads a classifiable intent name out of completion output such as
// "NAVIGATION", "`list bookmarks`" or "Category: INFO_REQUEST.". Only the
// first line counts, and the name must be the whole answer or lead it followed
// by punctuation ("BOOKMARK - save the page"). Prose that merely mentions an
// intent is rejected.
func ParseKind(reply string) (entity.IntentKind, bool) {
	line, _, _ := strings.Cut(strings.TrimSpace(reply), "\n")
	norm := strings.ToUpper(stripQuotes(line))
	for _, prefix := range answerPrefixes {
		if rest, ok := strings.CutPrefix(norm, prefix); ok {
			norm = strings.ToUpper(stripQuotes(rest))
			break
		}
	}

	whole := strings.TrimSpace(strings.TrimRight(norm, ".!"))
	whole = strings.NewReplacer(" ", "_", "-", "_").Replace(whole)
	if k := entity.IntentKind(whole); slices.Contains(entity.ClassifiableIntents, k) {
		return k, true
	}

	end := strings.IndexFunc(norm, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '_'
	})
	if end <= 0 {
		return "", false
	}
	head := entity.IntentKind(norm[:end])
	rest := strings.TrimLeft(norm[end:], " \t")
	if !slices.Contains(entity.ClassifiableIntents, head) || rest == "" {
		return "", false
	}
	if !strings.ContainsRune(leadSeparators, []rune(rest)[0]) {
		return "", false
	}
	return head, true
}

// MatchOption returns the option the reply names. Matching is exact after
// trimming quotes, then case-insensitive; the canonical option is returned.
func MatchOption(reply string, options []string) (string, bool) {
	choice := strings.TrimSpace(stripQuotes(reply))
	if choice == "" || strings.EqualFold(choice, "none") {
		return "", false
	}
	for _, o := range options {
		if choice == o {
			return o, true
		}
	}
	for _, o := range options {
		if strings.EqualFold(choice, o) {
			return o, true
		}
	}
	return "", false
}

func stripQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"'`")
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func containsAny(words []string, set map[string]struct{}) bool {
	for _, w := range words {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}
