package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every HTML tag and attribute. bluemonday policies are
// read-only after construction, so sharing one instance is safe; never call
// mutating helpers (AddAttr, AllowElements, ...) on it after init.
var strict = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true) // "a<b>b</b>" must not become "ab"
	return p
}()

// Clean strips HTML from user input and normalizes it for storage.
// Note titles and bodies pass through here before they reach a store;
// stores assume already-clean input.
//
//   - "<script>alert(1)</script>hi" -> "hi"
//   - "<p>Hello <b>world</b></p>"   -> "Hello world"
//   - "**markdown** text"           -> "**markdown** text" (preserved)
//
// Newlines survive; runs of spaces within a line collapse to one.
func Clean(s string) string {
	out := strict.Sanitize(s)
	out = strings.TrimSpace(out)

	// Unescape entities (&#13; etc.) before whitespace normalization so they
	// count as real characters.
	out = html.UnescapeString(out)
	out = strings.ReplaceAll(out, "\u00a0", " ")

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}
