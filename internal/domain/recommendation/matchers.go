package recommendation

import (
	"regexp"
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
)

// Matcher pulls one intent field out of free text.
type Matcher func(text string) (string, bool)

var (
	frenchLocationPattern  = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:près de|près|dans|à)\s?([\p{L}\-' ]+)`)
	englishLocationPattern = regexp.MustCompile(`(?i)\b(?:near|at|in)\s+([\p{L}\-' ]+)`)
)

// activityKeywords maps every recognised spelling to its vocabulary keyword.
// Order matters for leftmost-first matching: longer phrases come first.
var activityKeywords = []struct {
	pattern   string
	canonical string
}{
	{"centre commercial", "centre commercial"},
	{"shopping center", "centre commercial"},
	{"shopping mall", "centre commercial"},
	{"fast food", "fast food"},
	{"fast-food", "fast food"},
	{"restaurant", "restaurant"},
	{"pizzeria", "pizzeria"},
	{"boutique", "boutique"},
	{"italien", "italien"},
	{"italian", "italien"},
	{"cinéma", "cinéma"},
	{"cinema", "cinéma"},
	{"musée", "musée"},
	{"musee", "musée"},
	{"museum", "musée"},
	{"plage", "plage"},
	{"beach", "plage"},
	{"hôtel", "hôtel"},
	{"hotel", "hôtel"},
	{"sushi", "sushi"},
	{"café", "café"},
	{"cafe", "café"},
	{"parc", "parc"},
	{"park", "parc"},
	{"bar", "bar"},
}

// DefaultLocationMatchers tries French prepositions before English ones.
func DefaultLocationMatchers() []Matcher {
	return []Matcher{
		regexpMatcher(frenchLocationPattern),
		regexpMatcher(englishLocationPattern),
	}
}

// DefaultActivityMatchers matches the closed venue vocabulary.
func DefaultActivityMatchers() []Matcher {
	return []Matcher{vocabularyMatcher()}
}

func regexpMatcher(pattern *regexp.Regexp) Matcher {
	return func(text string) (string, bool) {
		match := pattern.FindStringSubmatch(text)
		if len(match) < 2 {
			return "", false
		}
		value := strings.TrimSpace(match[1])
		return value, value != ""
	}
}

func vocabularyMatcher() Matcher {
	patterns := make([]string, len(activityKeywords))
	for i, kw := range activityKeywords {
		patterns[i] = kw.pattern
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.LeftMostFirstMatch,
	})
	automaton := builder.Build(patterns)

	return func(text string) (string, bool) {
		matches := automaton.FindAll(strings.ToLower(text))
		if len(matches) == 0 {
			return "", false
		}
		return activityKeywords[matches[0].Pattern()].canonical, true
	}
}
