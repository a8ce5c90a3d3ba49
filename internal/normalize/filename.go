package normalize

import (
	"path/filepath"
	"strings"
	"unicode"
)

// NameExtractor is the strategy for guessing a passenger name out of a
// document filename. Best effort only: a miss is never an error.
type NameExtractor interface {
	TryExtractName(filename string) (string, bool)
}

// markerWords introduce a passenger name in common booking filenames
// ("Boarding pass for Agata Brignone 2026-06-15.pdf", "biglietto per Mario Rossi.pdf").
var markerWords = map[string]bool{
	"for": true,
	"per": true,
	"fuer": true,
	"pour": true,
}

// stopWords terminate a name run; they show up in filenames after the
// passenger name, never inside it.
var stopWords = map[string]bool{
	"flight": true, "hotel": true, "ticket": true, "booking": true,
	"boarding": true, "pass": true, "itinerary": true, "reservation": true,
	"confirmation": true, "on": true, "the": true, "volo": true, "del": true,
}

// FilenameNameExtractor parses full names out of filenames using marker-word
// patterns. It implements NameExtractor.
type FilenameNameExtractor struct{}

// NewFilenameNameExtractor creates the default filename-based NameExtractor.
func NewFilenameNameExtractor() *FilenameNameExtractor {
	return &FilenameNameExtractor{}
}

// TryExtractName looks for a marker word ("for", "per", ...) followed by two
// to four alphabetic tokens before a digit, stop word, or the end of the
// filename. Returns the joined tokens when a plausible full name is found.
func (x *FilenameNameExtractor) TryExtractName(filename string) (string, bool) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	tokens := tokenize(base)

	for i, tok := range tokens {
		if !markerWords[strings.ToLower(tok)] {
			continue
		}

		var name []string
		for j := i + 1; j < len(tokens) && len(name) < 4; j++ {
			next := tokens[j]
			if stopWords[strings.ToLower(next)] || !isAlphabetic(next) {
				break
			}
			name = append(name, next)
		}
		if len(name) >= 2 {
			return strings.Join(name, " "), true
		}
	}
	return "", false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '.' || r == ','
	})
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && r != '\'' {
			return false
		}
	}
	return len(s) > 0
}
