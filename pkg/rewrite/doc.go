// Package rewrite holds the wire model of the email rewriting service and the
// HTTP client that talks to it.
//
// A DraftRequest carries the three required form fields (reason, draft email,
// instructions) plus optional provider overrides. Overrides are trimmed and
// omitted from the JSON body when blank so the backend can apply its own
// defaults. A Result is either a rewritten email or an error descriptor; the
// presence of the error field is the only discriminant.
//
// Client.Rewrite always parses the response body as JSON before looking at the
// status code. Transport failures (network errors, non-2xx statuses, bodies
// that are not JSON) are returned as errors; an application-level failure
// reported inside a 2xx body is returned as a Result whose Failed method
// reports true. Message picks the text shown to the user for an error.
package rewrite
