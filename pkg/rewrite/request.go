package rewrite

import (
	"errors"
	"strings"
)

// Field labels as shown on the form.
const (
	LabelReason      = "Reason for Email"
	LabelEmailText   = "Draft Email"
	LabelInstruction = "Instructions"
)

// ErrMissingFields is matched by errors.Is for any *MissingFieldsError.
var ErrMissingFields = errors.New("rewrite: missing required fields")

// MissingFieldsError lists the required form fields that are empty.
type MissingFieldsError struct {
	Labels []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Labels, ", ")
}

func (e *MissingFieldsError) Is(target error) bool { return target == ErrMissingFields }

// Fields is the editable draft state of the form.
type Fields struct {
	Reason      string
	EmailText   string
	Instruction string
}

// Validate reports which required fields are empty. Whitespace counts as
// content; the backend accepts it too.
func (f Fields) Validate() error {
	var missing []string

	if f.Reason == "" {
		missing = append(missing, LabelReason)
	}
	if f.EmailText == "" {
		missing = append(missing, LabelEmailText)
	}
	if f.Instruction == "" {
		missing = append(missing, LabelInstruction)
	}

	if len(missing) > 0 {
		return &MissingFieldsError{Labels: missing}
	}

	return nil
}

// Overrides are the optional provider settings layered into every request.
type Overrides struct {
	APIKey  string //nolint:gosec // user-supplied override, not a hardcoded secret
	Model   string
	BaseURL string
}

// DraftRequest is the JSON body of POST /api/rewrite.
type DraftRequest struct {
	Reason      string `json:"reason"`
	EmailText   string `json:"email_text"`
	Instruction string `json:"instruction"`
	APIKey      string `json:"api_key,omitempty"` //nolint:gosec // forwarded override
	Model       string `json:"model,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
}

// NewDraftRequest builds the outgoing payload from the current field values
// and the overrides. The base fields are sent verbatim; overrides are trimmed
// and left empty (and therefore omitted) when blank.
func NewDraftRequest(f Fields, o Overrides) DraftRequest {
	return DraftRequest{
		Reason:      f.Reason,
		EmailText:   f.EmailText,
		Instruction: f.Instruction,
		APIKey:      strings.TrimSpace(o.APIKey),
		Model:       strings.TrimSpace(o.Model),
		BaseURL:     strings.TrimSpace(o.BaseURL),
	}
}
