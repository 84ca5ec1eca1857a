package atoms

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/spigell/hh-screener/internal/textproc"
)

var (
	singlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^.*script$`),
		regexp.MustCompile(`^.*sql$`),
		regexp.MustCompile(`^.*db$`),
		regexp.MustCompile(`^.*py$`),
		regexp.MustCompile(`^[a-z]+\d+$`),
	}
	compoundPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^.*script$`),
		regexp.MustCompile(`(?i)^.*sql$`),
		regexp.MustCompile(`(?i)^.*db$`),
		regexp.MustCompile(`(?i)^.*py$`),
		regexp.MustCompile(`(?i)^.*js$`),
		regexp.MustCompile(`(?i)^.*\.net$`),
		regexp.MustCompile(`(?i)^micro`),
		regexp.MustCompile(`(?i)^web`),
		regexp.MustCompile(`(?i)^data`),
		regexp.MustCompile(`(?i)^full.*stack$`),
		regexp.MustCompile(`(?i)^front.*end$`),
		regexp.MustCompile(`(?i)^back.*end$`),
	}
	durationRe = regexp.MustCompile(`\d+\s*(year|yr|month|mo)`)
)

// IsValid reports whether atom is a requirement worth scoring. Single tokens must
// look technical; compounds pass unless they are mostly adjectives.
func IsValid(atom string) bool {
	s := textproc.Normalize(atom)
	if len(s) < 2 || len(s) > 60 {
		return false
	}
	if Gibberish(s) || blocked(s) {
		return false
	}

	tokens := tokenize(s)
	if len(tokens) == 0 {
		return false
	}
	meaningful := meaningfulTokens(tokens)
	if len(meaningful) == 0 {
		return false
	}

	if len(meaningful) == 1 {
		return validSingle(meaningful[0], atom)
	}

	if durationRe.MatchString(atom) || durationRe.MatchString(s) {
		return true
	}
	for _, re := range compoundPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	if hasDigit(s) || hasUpper(atom) || strings.ContainsAny(atom, "+#.") {
		return true
	}

	if len(meaningful) <= 4 {
		adjectives := 0
		for _, t := range tokens {
			if _, ok := leadingAdjectives[t]; ok {
				adjectives++
			}
		}
		return float64(adjectives)/float64(len(tokens)) <= 0.5
	}
	return true
}

func validSingle(token, original string) bool {
	if _, weak := weakSingles[token]; weak {
		return false
	}
	if _, ok := shortAcronyms[token]; ok {
		return true
	}
	if hasDigit(token) || hasUpper(original) || strings.ContainsAny(original, "+#.") {
		return true
	}
	if strings.HasSuffix(token, "js") || strings.HasSuffix(token, "sql") {
		return true
	}
	// short alphabetic tokens are usually acronyms or tool names (aws, git, npm)
	if len(token) <= 4 && isAlpha(token) {
		return true
	}
	for _, re := range singlePatterns {
		if re.MatchString(token) {
			return true
		}
	}
	return false
}

// Gibberish flags strings that cannot be a requirement: too short, no letters,
// at most two distinct characters, mostly punctuation, or the same word at both ends.
func Gibberish(s string) bool {
	if len([]rune(s)) < 2 {
		return true
	}

	letters := false
	special := 0
	total := 0
	distinct := make(map[rune]struct{})
	for _, r := range s {
		total++
		if unicode.IsLetter(r) {
			letters = true
		}
		if r != ' ' {
			distinct[r] = struct{}{}
			if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				special++
			}
		}
	}
	if !letters || len(distinct) <= 2 {
		return true
	}
	if float64(special) > float64(total)*0.5 {
		return true
	}

	words := strings.Fields(s)
	return len(words) > 1 && words[0] == words[len(words)-1]
}

func tokenize(s string) []string {
	return wordRe.FindAllString(textproc.Normalize(s), -1)
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func hasUpper(s string) bool {
	return strings.IndexFunc(s, unicode.IsUpper) >= 0
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
