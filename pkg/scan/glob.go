// The KEYS command filters cached keys with a glob pattern; the following module implements glob matching.
// Patterns follow v.io globs: `*` matches any run of characters, `?` matches a single character and `/` separates
// pattern elements. Only the first element of the pattern is matched against keys.

package scan

import (
	"fmt"
	"iter"

	"v.io/v23/glob"
)

// MatchGlob filters the `keys` stream with the given glob `pattern`.
func MatchGlob(pattern string, keys iter.Seq[string]) (iter.Seq[string], error) {
	parsedPattern, err := glob.Parse(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	head := parsedPattern.Head()
	return func(yield func(string) bool) {
		for key := range keys {
			if head.Match(key) {
				if !yield(key) {
					return
				}
			}
		}
	}, nil
}
