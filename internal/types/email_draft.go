package types

// EmailDraft is the result of composing one email.
type EmailDraft struct {
	Body string `json:"body"`
	// SignatureAppended is true when a synthesized signature was added to the model output.
	SignatureAppended bool `json:"signature_appended"`
	// Degraded is true when generation failed and Body carries the error message.
	Degraded bool `json:"degraded,omitempty"`
}
