package sqlfilter

import "strings"

const likeEscapeClause = "ESCAPE '\\'"

var likeEscaper = strings.NewReplacer(
	"\\", "\\\\",
	"%", "\\%",
	"_", "\\_",
)

// escapeLikePattern escapes LIKE wildcards so value matches literally.
func escapeLikePattern(value string) string {
	return likeEscaper.Replace(value)
}

// likePattern escapes value and adds the requested wildcards.
func likePattern(value string, prefixWildcard, suffixWildcard bool) string {
	pattern := escapeLikePattern(value)
	if prefixWildcard {
		pattern = "%" + pattern
	}
	if suffixWildcard {
		pattern += "%"
	}
	return pattern
}
