package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"voice-browser/internal/application/port/input"
	"voice-browser/internal/application/port/output"
	"voice-browser/internal/domain/entity"
	"voice-browser/internal/infrastructure/prompts"
	"voice-browser/internal/usecase/intent"
)

var _ input.Navigator = (*Orchestrator)(nil)

type IntentResolver interface {
	Resolve(ctx context.Context, utterance string, labels []string) entity.Intent
}

type Config struct {
	MaxListedSections int
}

func DefaultConfig() Config {
	return Config{MaxListedSections: 5}
}

type Deps struct {
	Summarizer input.Summarizer
	Info       input.InfoExtractor
	Sites      input.SiteFinder
	Intents    IntentResolver
	// Completer serves bookmark matching and site-name extraction.
	Completer output.TextCompleter
	Prompts   *prompts.Library
	// Metrics is optional.
	Metrics output.MetricsPort
	Logger  output.LoggerPort
}

// Orchestrator is the turn state machine. It is the only writer of session state:
// every turn works on a snapshot that is committed only when the turn completes.
type Orchestrator struct {
	Deps
	cfg Config
}

func New(deps Deps, cfg Config) *Orchestrator {
	return &Orchestrator{Deps: deps, cfg: cfg}
}

// Respond handles one free-text turn. An absolute URL is loaded directly;
// anything else is resolved against the page on top of history.
func (o *Orchestrator) Respond(ctx context.Context, session *entity.Session, utterance string) entity.Turn {
	return o.run(ctx, session, utterance, o.dispatch)
}

// Open starts a session. Before any page is loaded, a request that is neither a URL
// nor a keyword command is resolved to a website.
func (o *Orchestrator) Open(ctx context.Context, session *entity.Session, request string) entity.Turn {
	_, hasPage := session.Current()
	_, isURL := entity.AbsoluteURL(request)
	_, isKeyword := intent.Keyword(request)
	if hasPage || isURL || isKeyword || strings.TrimSpace(request) == "" {
		return o.Respond(ctx, session, request)
	}
	return o.run(ctx, session, request, o.startFromSearch)
}

type step func(ctx context.Context, s *entity.Session, utterance string, log output.LoggerPort) (entity.Turn, error)

func (o *Orchestrator) run(ctx context.Context, session *entity.Session, utterance string, fn step) entity.Turn {
	start := time.Now()
	log := o.Logger.WithField("session_id", session.ID)

	next := session.Snapshot()
	turn, err := guard(func() (entity.Turn, error) {
		return fn(ctx, next, utterance, log)
	})
	if err != nil {
		log.Error("Turn failed, session left unchanged", "utterance", utterance, "error", err)
		turn = entity.Turn{
			Utterance: utterance,
			Intent:    entity.NewIntent(entity.IntentNone),
			Response:  Apology,
		}
	} else {
		session.Restore(next)
	}

	log.Info("Turn completed",
		"intent", turn.Intent.String(),
		"history_len", len(session.History),
		"duration", time.Since(start),
	)
	if o.Metrics != nil {
		o.Metrics.ObserveTurn(string(turn.Intent.Kind), time.Since(start))
	}
	return turn
}

func guard(fn func() (entity.Turn, error)) (turn entity.Turn, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("turn panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return fn()
}

func (o *Orchestrator) dispatch(ctx context.Context, s *entity.Session, utterance string, log output.LoggerPort) (entity.Turn, error) {
	turn := entity.Turn{Utterance: utterance}

	if target, ok := entity.AbsoluteURL(utterance); ok {
		turn.Intent = entity.NewIntent(entity.IntentNavigation)
		return o.navigate(ctx, s, turn, target), nil
	}

	cur, ok := s.Current()
	if !ok {
		in, _ := intent.Keyword(utterance)
		turn.Intent = in
		switch in.Kind {
		case entity.IntentExit:
			turn.Response = Farewell
		case entity.IntentBack:
			turn.Response = AlreadyFirstPage
		default:
			turn.Intent = entity.NewIntent(entity.IntentNone)
			turn.Response = NoPageLoaded
		}
		return turn, nil
	}

	page := o.Summarizer.Summarize(ctx, cur)
	labels := page.Links.Labels()
	turn.Intent = o.Intents.Resolve(ctx, utterance, labels)
	log.Debug("Intent resolved", "intent", turn.Intent.String(), "url", cur)

	switch turn.Intent.Kind {
	case entity.IntentExit:
		turn.Response = Farewell

	case entity.IntentBack:
		top, ok := s.Pop()
		if !ok {
			turn.Response = o.sections(AlreadyFirstPage, labels)
			break
		}
		o.show(ctx, s, &turn, top)

	case entity.IntentInfoRequest:
		answer := o.Info.Answer(ctx, cur, utterance)
		turn.Response = o.sections(answer, labels)

	case entity.IntentBookmark:
		if s.CurrentTitle == "" {
			turn.Response = o.sections(bookmarkNoTitle, labels)
			break
		}
		s.Bookmarks.Set(s.CurrentTitle, cur)
		turn.Response = o.sections(bookmarkSaved(s.CurrentTitle), labels)

	case entity.IntentListBookmarks:
		if s.Bookmarks.Len() == 0 {
			turn.Response = o.sections(noBookmarks, labels)
			break
		}
		turn.Response = o.sections(bookmarkList(s.Bookmarks.Labels()), labels)

	case entity.IntentGoToBookmark:
		title, target, ok := o.matchBookmark(ctx, s, utterance, log)
		if !ok {
			msg := bookmarkNotFound
			if s.Bookmarks.Len() == 0 {
				msg = noBookmarks
			}
			turn.Response = o.sections(msg, labels)
			break
		}
		turn = o.navigate(ctx, s, turn, target)
		turn.Response = openingBookmark(title) + " " + turn.Response

	case entity.IntentSwitchWebsite:
		site := o.siteName(ctx, utterance, log)
		res := o.Sites.FindWebsite(ctx, site)
		if res.StillSearching || res.URL == nil {
			turn.Response = o.sections(res.Summary.Text, labels)
			break
		}
		o.commitSite(s, &turn, res)

	case entity.IntentNavigation:
		target, ok := page.Links.Get(turn.Intent.Label)
		if !ok {
			return turn, fmt.Errorf("resolved label %q is not on %s", turn.Intent.Label, cur)
		}
		turn = o.navigate(ctx, s, turn, target)

	default:
		turn.Intent = entity.NewIntent(entity.IntentNone)
		turn.Response = o.sections(helpText, labels)
	}

	return turn, nil
}

func (o *Orchestrator) startFromSearch(ctx context.Context, s *entity.Session, request string, log output.LoggerPort) (entity.Turn, error) {
	turn := entity.Turn{
		Utterance: request,
		Intent:    entity.NewIntent(entity.IntentSwitchWebsite),
	}
	res := o.Sites.FindWebsite(ctx, request)
	if res.StillSearching || res.URL == nil {
		log.Info("No site found for opening request", "request", request)
		turn.Response = o.sections(res.Summary.Text, nil)
		return turn, nil
	}
	o.commitSite(s, &turn, res)
	return turn, nil
}

// navigate pushes url and describes it.
func (o *Orchestrator) navigate(ctx context.Context, s *entity.Session, turn entity.Turn, url string) entity.Turn {
	s.Push(url)
	o.show(ctx, s, &turn, url)
	return turn
}

// show summarizes url, which is already on top of history, into the turn.
func (o *Orchestrator) show(ctx context.Context, s *entity.Session, turn *entity.Turn, url string) {
	summary := o.Summarizer.Summarize(ctx, url)
	s.CurrentTitle = summary.UsableTitle()
	turn.URL = &url
	turn.Response = o.sections(summary.Text, summary.Links.Labels())
}

func (o *Orchestrator) commitSite(s *entity.Session, turn *entity.Turn, res entity.SiteResult) {
	url := *res.URL
	s.Push(url)
	s.CurrentTitle = res.Title
	if s.CurrentTitle == "" {
		s.CurrentTitle = res.Summary.UsableTitle()
	}
	turn.URL = &url
	turn.Response = o.sections(res.Summary.Text, res.Summary.Links.Labels())
}

func (o *Orchestrator) matchBookmark(ctx context.Context, s *entity.Session, utterance string, log output.LoggerPort) (string, string, bool) {
	titles := s.Bookmarks.Labels()
	if len(titles) == 0 {
		return "", "", false
	}
	reply, err := o.complete(ctx, prompts.BookmarkMatch, map[string]any{
		"Utterance": utterance,
		"Titles":    titles,
	})
	if err != nil {
		log.Warn("Bookmark match failed", "error", err)
		return "", "", false
	}
	title, ok := intent.MatchOption(reply, titles)
	if !ok {
		return "", "", false
	}
	target, _ := s.Bookmarks.Get(title)
	return title, target, true
}

// siteName extracts the site the user asked for, falling back to the whole utterance.
func (o *Orchestrator) siteName(ctx context.Context, utterance string, log output.LoggerPort) string {
	reply, err := o.complete(ctx, prompts.SiteName, map[string]any{"Utterance": utterance})
	if err != nil {
		log.Warn("Site name extraction failed", "error", err)
		return utterance
	}
	if name := strings.TrimSpace(reply); name != "" {
		return name
	}
	return utterance
}

func (o *Orchestrator) complete(ctx context.Context, name string, data map[string]any) (string, error) {
	prompt, err := o.Prompts.Render(name, data)
	if err != nil {
		return "", err
	}
	return o.Completer.Generate(ctx, prompt)
}

func (o *Orchestrator) sections(text string, labels []string) string {
	return withSections(text, labels, o.cfg.MaxListedSections)
}
