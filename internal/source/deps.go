package source

import "regexp"

var reRequireCall = regexp.MustCompile(`\brequire\(\s*['"]([^'"]+?)['"]`)

// ParseRequire finds the identifiers passed as string literals to require.
// Computed identifiers are not detected.
func ParseRequire(text string) []string {
	calls := reRequireCall.FindAllStringSubmatch(text, -1)
	ids := make([]string, len(calls))
	for i, call := range calls {
		ids[i] = call[1]
	}
	return ids
}
