// Package settings persists the user's provider overrides (API key, model,
// base URL) in a key-value Storage under a single fixed key. A Store loads the
// blob once, merges it over the defaults and writes the full object back on
// every single-field edit.
package settings

import (
	"fmt"

	"github.com/germanamz/rewriter/pkg/rewrite"
)

// StorageKey is the key the settings blob is stored under.
const StorageKey = "email_rewriter_settings"

// Settings are optional provider overrides. The zero value is the default.
type Settings struct {
	APIKey  string `json:"api_key"` //nolint:gosec // user-supplied override, not a hardcoded secret
	Model   string `json:"model"`
	BaseURL string `json:"base_url"`
}

// Overrides converts s into request overrides. Trimming happens when the
// request is built.
func (s Settings) Overrides() rewrite.Overrides {
	return rewrite.Overrides{APIKey: s.APIKey, Model: s.Model, BaseURL: s.BaseURL}
}

// Get returns the value of f.
func (s Settings) Get(f Field) string {
	switch f {
	case FieldAPIKey:
		return s.APIKey
	case FieldModel:
		return s.Model
	case FieldBaseURL:
		return s.BaseURL
	}

	return ""
}

// With returns a copy of s with f set to value.
func (s Settings) With(f Field, value string) Settings {
	switch f {
	case FieldAPIKey:
		s.APIKey = value
	case FieldModel:
		s.Model = value
	case FieldBaseURL:
		s.BaseURL = value
	}

	return s
}

// Field names one settings entry.
type Field string

const (
	FieldAPIKey  Field = "api_key"
	FieldModel   Field = "model"
	FieldBaseURL Field = "base_url"
)

// Fields lists every settings field in display order.
var Fields = []Field{FieldAPIKey, FieldModel, FieldBaseURL}

// Label is the human-readable name of f.
func (f Field) Label() string {
	switch f {
	case FieldAPIKey:
		return "API Key"
	case FieldModel:
		return "Model"
	case FieldBaseURL:
		return "Base URL"
	}

	return string(f)
}

// Placeholder is the hint shown in an empty input for f.
func (f Field) Placeholder() string {
	switch f {
	case FieldAPIKey:
		return "sk-..."
	case FieldModel:
		return "e.g. deepseek/deepseek-chat-v3-0324:free"
	case FieldBaseURL:
		return "https://openrouter.ai/api/v1"
	}

	return ""
}

// ParseField resolves a field name.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}

	return "", fmt.Errorf("settings: unknown field %q", name)
}
