package evidence

import (
	"regexp"
	"strings"

	"github.com/spigell/hh-screener/internal/textproc"
)

const (
	// MinSegmentLength drops fragments too short to carry evidence.
	MinSegmentLength = 18
	// MaxSegments bounds the segments kept per resume.
	MaxSegments = 400
	// MaxEvidenceText bounds the segment text stored in an Item.
	MaxEvidenceText = 300
)

var bulletRe = regexp.MustCompile(`^\s*(?:[-*•●▪◦‣–]|\d+[.)])\s+(.+)$`)

// Segment splits a resume into evidence segments: sentences, bullet lines of at
// least three words and any externally supplied chunks, in that order. Duplicates
// (ignoring case) and segments shorter than MinSegmentLength are dropped.
func Segment(text string, chunks []string, seg textproc.Segmenter) []string {
	if seg == nil {
		seg = textproc.RuleSegmenter{}
	}

	var cands []string
	cands = append(cands, seg.Sentences(text)...)
	for _, line := range strings.Split(text, "\n") {
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if body := strings.TrimSpace(m[1]); len(strings.Fields(body)) >= 3 {
			cands = append(cands, body)
		}
	}
	cands = append(cands, chunks...)

	seen := make(map[string]struct{}, len(cands))
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		c = strings.TrimSpace(c)
		if len(c) < MinSegmentLength {
			continue
		}
		key := strings.ToLower(c)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
		if len(out) >= MaxSegments {
			break
		}
	}
	return out
}
