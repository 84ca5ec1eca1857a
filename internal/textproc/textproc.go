// Package textproc holds the text primitives shared by the matching packages:
// normalization, tokenization, sentence splitting and chunking.
package textproc

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	tokenRe = regexp.MustCompile(`[a-z0-9][a-z0-9+.#-]*`)
	blankRe = regexp.MustCompile(`\n{3,}`)
)

// Normalize lowercases, trims and collapses runs of whitespace into a single space.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return spaceRe.ReplaceAllString(s, " ")
}

// Fold strips diacritics and applies compatibility composition, so that
// "Pokémon" and "Pokemon" or full-width letters compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFKC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// Tokens returns technical tokens of the normalized text. Tokens keep the
// characters that matter for technology names: "c++", "c#", "node.js", "ci-cd".
func Tokens(s string) []string {
	return tokenRe.FindAllString(Normalize(s), -1)
}

// TokenSet is Tokens as a set.
func TokenSet(s string) map[string]struct{} {
	tokens := Tokens(s)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Segmenter splits text into sentences.
type Segmenter interface {
	Sentences(text string) []string
}

// RuleSegmenter is the default sentence boundary pass: it breaks on newlines and on
// terminal punctuation followed by whitespace.
type RuleSegmenter struct{}

func (RuleSegmenter) Sentences(text string) []string {
	return Sentences(text)
}

// Sentences splits text on line breaks and on '.', '!' or '?' followed by whitespace.
// Decimal points and dotted names ("3.x", "node.js") are not boundaries.
func Sentences(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		start := 0
		for i, r := range runes {
			if r != '.' && r != '!' && r != '?' {
				continue
			}
			if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
				continue
			}
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
		if start < len(runes) {
			if s := strings.TrimSpace(string(runes[start:])); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

const (
	// MaxChunks bounds the number of chunks produced from a single document.
	MaxChunks = 200
	// MaxTextLength bounds the text accepted for chunking.
	MaxTextLength = 100000
)

// Chunk groups sentences into chunks of at most maxChars, carrying the trailing
// sentences of the previous chunk (up to overlap characters) into the next one.
func Chunk(text string, seg Segmenter, maxChars, overlap int) []string {
	if len(text) > MaxTextLength {
		cut := MaxTextLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	text = strings.TrimSpace(blankRe.ReplaceAllString(text, "\n\n"))
	if text == "" {
		return nil
	}
	if seg == nil {
		seg = RuleSegmenter{}
	}
	if maxChars <= 0 {
		maxChars = 800
	}

	sentences := seg.Sentences(text)
	if len(sentences) == 0 {
		return []string{text}
	}

	var (
		chunks  []string
		current []string
		length  int
	)
	for _, s := range sentences {
		if length+len(s) > maxChars && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			if len(chunks) >= MaxChunks {
				return chunks
			}

			var kept []string
			keptLen := 0
			for i := len(current) - 1; i >= 0 && overlap > 0; i-- {
				if keptLen+len(current[i]) > overlap {
					break
				}
				kept = append([]string{current[i]}, kept...)
				keptLen += len(current[i])
			}
			current, length = kept, keptLen
		}
		current = append(current, s)
		length += len(s)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// Truncate returns at most limit runes of s.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
