package atoms

import (
	"strings"

	"github.com/spigell/hh-screener/internal/textproc"
)

// Contains reports whether atom is present in a text given as its token set and,
// optionally, its full content. An atom is present when it occurs verbatim, when all
// of its tokens occur, when at least 60% of a multi-token atom's tokens occur, or
// when an abbreviation token has one of its expansion words in the text.
func Contains(atom string, tokens map[string]struct{}, fullText string) bool {
	a := textproc.Normalize(atom)
	if len(a) < 2 {
		return false
	}

	if fullText != "" && strings.Contains(textproc.Normalize(fullText), a) {
		return true
	}

	atomTokens := textproc.TokenSet(a)
	if len(atomTokens) == 0 {
		return false
	}

	matched := 0
	for t := range atomTokens {
		if _, ok := tokens[t]; ok {
			matched++
		}
	}
	if matched == len(atomTokens) {
		return true
	}
	if len(atomTokens) > 1 && float64(matched)/float64(len(atomTokens)) >= 0.6 {
		return true
	}

	for t := range atomTokens {
		for _, word := range techExpansions[t] {
			if _, ok := tokens[word]; ok {
				return true
			}
		}
	}
	return false
}
