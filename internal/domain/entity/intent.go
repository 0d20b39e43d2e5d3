package entity

type IntentKind string

const (
	IntentExit          IntentKind = "EXIT"
	IntentBack          IntentKind = "BACK"
	IntentInfoRequest   IntentKind = "INFO_REQUEST"
	IntentBookmark      IntentKind = "BOOKMARK"
	IntentListBookmarks IntentKind = "LIST_BOOKMARKS"
	IntentGoToBookmark  IntentKind = "GO_TO_BOOKMARK"
	IntentSwitchWebsite IntentKind = "SWITCH_WEBSITE"
	IntentNavigation    IntentKind = "NAVIGATION"
	IntentNone          IntentKind = "NONE"
)

// ClassifiableIntents are the kinds a completion call may return.
// EXIT and BACK are only ever produced by keyword match.
var ClassifiableIntents = []IntentKind{
	IntentInfoRequest,
	IntentNavigation,
	IntentBookmark,
	IntentListBookmarks,
	IntentGoToBookmark,
	IntentSwitchWebsite,
	IntentNone,
}

// Intent is the classified purpose of one free-text turn.
// Label is set only for IntentNavigation and is always one of the offered labels;
// it is empty when the utterance was itself a URL.
type Intent struct {
	Kind  IntentKind
	Label string
}

func NewIntent(kind IntentKind) Intent {
	return Intent{Kind: kind}
}

func NavigateTo(label string) Intent {
	return Intent{Kind: IntentNavigation, Label: label}
}

func (i Intent) String() string {
	if i.Kind == IntentNavigation && i.Label != "" {
		return string(i.Kind) + "(" + i.Label + ")"
	}
	return string(i.Kind)
}
