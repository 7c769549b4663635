package composition

import (
	"regexp"
	"strings"
)

// trailingClosing matches a bare closing line at the very end of the text,
// i.e. a closing the model wrote without a name under it.
var trailingClosing = regexp.MustCompile(`(?i)(^|\n)[ \t]*(best regards|sincerely)[ \t]*,?[ \t]*$`)

// hasClosing reports whether text already carries a sign-off of its own.
func hasClosing(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "best regards") || strings.Contains(lower, "sincerely")
}

// finalizeBody trims the model output and decides whether to append signature.
// Output that already signs off keeps its own closing verbatim; a dangling
// closing line is dropped and replaced by the synthesized signature.
func finalizeBody(raw, signature string) (body string, appended bool) {
	text := strings.TrimSpace(raw)
	text = strings.TrimSpace(trailingClosing.ReplaceAllString(text, ""))

	if hasClosing(text) {
		return text, false
	}
	if text == "" {
		return signature, true
	}
	return text + "\n\n" + signature, true
}
