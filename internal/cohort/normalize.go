package cohort

import (
	"regexp"
	"strings"
)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// NormalizeMunicipality standardizes a municipality name for matching by:
//  1. Trimming whitespace
//  2. Converting to lowercase
//  3. Folding ё into е (registries disagree on which they use)
//  4. Stripping punctuation (commas, periods, quotes, dashes)
//  5. Collapsing multiple spaces into single spaces
//
// Component tables keyed by municipality name rather than territory code
// join against this form on both sides.
func NormalizeMunicipality(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = strings.ToLower(name)
	name = strings.NewReplacer(
		"ё", "е",
		",", "",
		".", "",
		"«", "",
		"»", "",
		"\"", "",
		"-", " ",
	).Replace(name)

	name = multiSpaceRe.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
