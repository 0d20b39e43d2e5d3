package prompts

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

const (
	Summary          = "summary"
	InfoExtract      = "info_extract"
	InfoRewrite      = "info_rewrite"
	IntentClassify   = "intent_classify"
	IntentNavigation = "intent_navigation"
	BookmarkMatch    = "bookmark_match"
	SiteName         = "site_name"
	SiteFind         = "site_find"
	SiteTitle        = "site_title"
)

var required = []string{
	Summary, InfoExtract, InfoRewrite, IntentClassify, IntentNavigation,
	BookmarkMatch, SiteName, SiteFind, SiteTitle,
}

// Load parses a YAML document of name: template pairs.
func Load(data []byte) (*Library, error) {
	raw := make(map[string]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	return NewLibrary(raw)
}

// Default returns the prompts shipped with the binary.
func Default() *Library {
	lib, err := Load(defaultPrompts)
	if err != nil {
		panic(fmt.Sprintf("embedded prompts are invalid: %v", err))
	}
	for _, name := range required {
		if !lib.Has(name) {
			panic(fmt.Sprintf("embedded prompts are missing %q", name))
		}
	}
	return lib
}
