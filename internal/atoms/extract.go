// Package atoms extracts atomic requirements ("python", "rest api") from job
// description text and decides which of them are worth scoring.
package atoms

import (
	"regexp"
	"sort"
	"strings"

	"github.com/spigell/hh-screener/internal/textproc"
)

// DefaultMaxAtoms caps Extract when the caller passes a non-positive limit.
const DefaultMaxAtoms = 60

var (
	delimiterRe = regexp.MustCompile(`[|/•;,:()]`)
	phraseRe    = regexp.MustCompile(`[a-z0-9][a-z0-9+.#-]*(?:\s+[a-z0-9][a-z0-9+.#-]*){0,4}`)
	clauseRe    = regexp.MustCompile(`[^\w\s+#.-]|\.(?:\s|$)`)
	wordRe      = regexp.MustCompile(`[a-z0-9][a-z0-9+.#-]*`)
)

type scored struct {
	text  string
	score float64
}

// Extract returns up to maxAtoms candidate requirement phrases from text, most
// frequent first. The output is deterministic for identical input.
func Extract(text string, maxAtoms int) []string {
	if maxAtoms <= 0 {
		maxAtoms = DefaultMaxAtoms
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var cands []string
	cands = append(cands, nounChunks(text)...)

	for _, line := range strings.Split(text, "\n") {
		for _, part := range delimiterRe.Split(line, -1) {
			p := cleanCandidate(strings.Trim(part, " -/•|,;:"))
			if inRange(p, 50) && len(strings.Fields(p)) <= 5 {
				cands = append(cands, p)
			}
		}
	}

	for _, m := range phraseRe.FindAllString(textproc.Normalize(text), -1) {
		if s := cleanCandidate(m); inRange(s, 50) {
			cands = append(cands, s)
		}
	}

	freq := make(map[string]int)
	for _, c := range cands {
		if keepCandidate(c) {
			freq[c]++
		}
	}

	ranked := make([]scored, 0, len(freq))
	for k, v := range freq {
		boost := 1.0
		if n := len(strings.Fields(k)); n >= 1 && n <= 3 {
			boost = 1.15
		}
		ranked = append(ranked, scored{text: k, score: float64(v) * boost})
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if len(a.text) != len(b.text) {
			return len(a.text) < len(b.text)
		}
		return a.text > b.text
	})

	seen := make(map[string]struct{})
	out := make([]string, 0, maxAtoms)
	for _, r := range ranked {
		key := Canonical(r.text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r.text)
		if len(out) >= maxAtoms {
			break
		}
	}
	return out
}

// nounChunks approximates noun phrases: runs of words between stop words and
// clause punctuation.
func nounChunks(text string) []string {
	var out []string
	for _, clause := range clauseRe.Split(textproc.Normalize(text), -1) {
		var run []string
		flush := func() {
			if len(run) > 0 && len(run) <= 5 {
				if s := cleanCandidate(strings.Join(run, " ")); inRange(s, 50) {
					out = append(out, s)
				}
			}
			run = run[:0]
		}
		for _, w := range wordRe.FindAllString(clause, -1) {
			if _, stop := chunkStopWords[w]; stop {
				flush()
				continue
			}
			run = append(run, w)
		}
		flush()
	}
	return out
}

func keepCandidate(c string) bool {
	if c == "" || blocked(c) || Gibberish(c) {
		return false
	}
	tokens := strings.Fields(c)
	meaningful := meaningfulTokens(tokens)
	if len(meaningful) == 0 {
		return false
	}
	if len(meaningful) == 1 {
		if _, weak := weakSingles[meaningful[0]]; weak {
			return false
		}
	}
	if _, adj := leadingAdjectives[tokens[0]]; adj {
		return false
	}
	return true
}

func cleanCandidate(s string) string {
	return strings.TrimSuffix(textproc.Normalize(s), ".")
}

func inRange(s string, limit int) bool {
	return len(s) >= 2 && len(s) <= limit
}

func blocked(s string) bool {
	for _, phrase := range blockedPhrases {
		if strings.Contains(s, phrase) {
			return true
		}
	}
	return false
}

func meaningfulTokens(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		if _, generic := genericTokens[t]; !generic {
			out = append(out, t)
		}
	}
	return out
}
