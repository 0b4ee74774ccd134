package ats

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"text/template"

	"gopkg.in/yaml.v3"
)

type Mode string

const (
	ModeHRReview Mode = "hr_review"
	ModeATSMatch Mode = "ats_match"
)

//go:embed prompts.yaml
var defaultPromptsRaw []byte

// Prompts maps each analysis mode to its instruction template.
type Prompts map[Mode]*template.Template

// ParsePrompts reads a YAML mapping of mode name to template text.
func ParsePrompts(raw []byte) (Prompts, error) {
	var texts map[string]string
	if err := yaml.Unmarshal(raw, &texts); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}
	prompts := make(Prompts, len(texts))
	for name, text := range texts {
		tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse prompt %q: %w", name, err)
		}
		prompts[Mode(name)] = tmpl
	}
	for _, mode := range []Mode{ModeHRReview, ModeATSMatch} {
		if _, ok := prompts[mode]; !ok {
			return nil, fmt.Errorf("prompt catalog is missing %q", mode)
		}
	}
	return prompts, nil
}

// DefaultPrompts returns the embedded catalog. It panics only if the embedded
// file is broken, which the tests catch.
func DefaultPrompts() Prompts {
	prompts, err := ParsePrompts(defaultPromptsRaw)
	if err != nil {
		panic(err)
	}
	return prompts
}

// Render fills the template for mode with role.
func (p Prompts) Render(mode Mode, role string) (string, error) {
	tmpl, ok := p[mode]
	if !ok {
		return "", fmt.Errorf("unknown analysis mode %q", mode)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Role string }{Role: role}); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", mode, err)
	}
	return buf.String(), nil
}

func (p Prompts) Modes() []Mode {
	modes := make([]Mode, 0, len(p))
	for m := range p {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}
