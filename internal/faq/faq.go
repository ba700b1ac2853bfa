// Package faq holds the question/answer corpus served by the chatbot.
package faq

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one question/answer pair. Entries are never mutated after load.
type Entry struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

var ErrMalformed = errors.New("malformed faq entry")

// Load reads an ordered corpus from path. The file may be JSON or YAML.
func Load(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read faq file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a corpus and checks every entry has both fields.
func Parse(data []byte) ([]Entry, error) {
	var entries []Entry
	unmarshal := yaml.Unmarshal
	// libyaml rejects tab-indented JSON, which is what editors produce.
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		unmarshal = json.Unmarshal
	}
	if err := unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode faq: %w", err)
	}
	if err := Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func Validate(entries []Entry) error {
	for i, e := range entries {
		if strings.TrimSpace(e.Question) == "" {
			return fmt.Errorf("%w: entry %d has no question", ErrMalformed, i)
		}
		if strings.TrimSpace(e.Answer) == "" {
			return fmt.Errorf("%w: entry %d has no answer", ErrMalformed, i)
		}
	}
	return nil
}
