package rewrite

import "encoding/json"

// Fallback text rendered for missing result fields.
const (
	NoSubject   = "No subject provided"
	NoRecipient = "No recipient provided"
	NoSender    = "No sender provided"
	NoBody      = "No body provided"
)

// Result is the JSON body returned by the rewriting service. Either the email
// fields or Error (with an optional RawContent debug payload) are set.
type Result struct {
	Subject    string `json:"subject,omitempty"`
	Recipient  string `json:"recipient,omitempty"`
	Sender     string `json:"sender,omitempty"`
	Date       string `json:"date,omitempty"`
	Body       string `json:"body,omitempty"`
	Caution    string `json:"caution,omitempty"`
	Error      string `json:"error,omitempty"`
	RawContent string `json:"raw_content,omitempty"`
}

// UnmarshalJSON accepts raw_response as an alias of raw_content; the service
// uses the former once its retries are exhausted.
func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result

	var aux struct {
		plain
		RawResponse *string `json:"raw_response"`
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = Result(aux.plain)
	if r.RawContent == "" && aux.RawResponse != nil {
		r.RawContent = *aux.RawResponse
	}

	return nil
}

// Failed reports whether the service returned an error descriptor.
func (r Result) Failed() bool { return r.Error != "" }

// DisplaySubject returns the subject or its fallback text.
func (r Result) DisplaySubject() string { return orDefault(r.Subject, NoSubject) }

// DisplayRecipient returns the recipient or its fallback text.
func (r Result) DisplayRecipient() string { return orDefault(r.Recipient, NoRecipient) }

// DisplaySender returns the sender or its fallback text.
func (r Result) DisplaySender() string { return orDefault(r.Sender, NoSender) }

// DisplayBody returns the body or its fallback text.
func (r Result) DisplayBody() string { return orDefault(r.Body, NoBody) }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}

	return v
}
