package prompts

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"text/template"
)

var funcs = template.FuncMap{
	"join": strings.Join,
	"quoteJoin": func(items []string) string {
		quoted := make([]string, len(items))
		for i, s := range items {
			quoted[i] = strconv.Quote(s)
		}
		return strings.Join(quoted, ", ")
	},
}

type Library struct {
	templates map[string]*template.Template
}

func NewLibrary(raw map[string]string) (*Library, error) {
	lib := &Library{templates: make(map[string]*template.Template, len(raw))}
	for name, text := range raw {
		tmpl, err := template.New(name).Funcs(funcs).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse prompt %s: %w", name, err)
		}
		lib.templates[name] = tmpl
	}
	return lib, nil
}

func (l *Library) Has(name string) bool {
	_, ok := l.templates[name]
	return ok
}

func (l *Library) Render(name string, data any) (string, error) {
	tmpl, ok := l.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
