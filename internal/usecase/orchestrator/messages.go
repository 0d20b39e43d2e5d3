package orchestrator

import (
	"fmt"
	"strings"
)

const (
	Farewell         = "Alright, hope that was helpful! Goodbye."
	AlreadyFirstPage = "We're already on the first page."
	Apology          = "Sorry, something went wrong on my end. Please try that again."
	NoPageLoaded     = "No page is loaded yet. Just tell me where you'd like to go!"

	bookmarkNoTitle  = "I couldn't bookmark this page because I don't know what to call it yet."
	noBookmarks      = "You don't have any bookmarks yet."
	bookmarkNotFound = "I couldn't find that bookmark."
	helpText         = "I'm not sure what you'd like to do. You can pick one of the sections, or ask me a question about this page."

	sectionsPrefix = "I can take you to any of these sections: "
	openEnded      = "Just tell me where you'd like to go!"
)

// terminal responses are sent as-is, without the section list.
var terminal = []string{Farewell, Apology, openEnded}

func bookmarkSaved(title string) string {
	return fmt.Sprintf("Bookmarked this page as %s.", title)
}

func bookmarkList(titles []string) string {
	if len(titles) == 1 {
		return fmt.Sprintf("You have one bookmark: %s.", titles[0])
	}
	return fmt.Sprintf("You have %d bookmarks: %s.", len(titles), strings.Join(titles, ", "))
}

func openingBookmark(title string) string {
	return fmt.Sprintf("Opening your bookmark %s.", title)
}

// withSections appends up to max labels, or an open-ended prompt when there are none.
func withSections(text string, labels []string, max int) string {
	text = strings.TrimSpace(text)
	for _, t := range terminal {
		if strings.HasSuffix(text, t) {
			return text
		}
	}
	if len(labels) == 0 {
		return text + "\n" + openEnded
	}

	shown := labels
	if len(shown) > max {
		shown = shown[:max]
	}
	list := strings.Join(shown, ", ")
	if len(labels) > max {
		return text + "\n" + sectionsPrefix + list + "..."
	}
	return text + "\n" + sectionsPrefix + list + "."
}
