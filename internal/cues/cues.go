// Package cues aligns short job-description cues with cues taken from a resume.
package cues

import (
	"context"
	"strings"

	"github.com/spigell/hh-screener/internal/embedding"
)

const (
	MaxJDCues     = 25
	MaxResumeCues = 60

	StrongThreshold = 0.70
	WeakThreshold   = 0.40

	maxContextRunes = 257
	contextOverflow = 260
)

// ContextSource finds resume passages for a query.
type ContextSource interface {
	Search(ctx context.Context, query string, k int) []string
}

// Match is the best resume cue for one job-description cue.
type Match struct {
	JDCue      string  `json:"jd_cue"`
	ResumeCue  string  `json:"matched_resume_cue"`
	Similarity float64 `json:"similarity"`
	Context    string  `json:"resume_context,omitempty"`
}

type Alignment struct {
	JDCues            []string `json:"jd_cues"`
	ResumeCues        []string `json:"resume_cues"`
	Alignments        []Match  `json:"alignments"`
	AverageSimilarity float64  `json:"average_similarity"`
	Strong            []string `json:"strong_matches"`
	Weak              []string `json:"weak_matches"`
}

// Align matches every JD cue to its most similar resume cue. It never fails: with
// no cues, no embedder or a failed embedding every JD cue is reported weak.
func Align(ctx context.Context, jdCues, resumeCues []string, embedder embedding.Embedder) Alignment {
	return AlignWithContext(ctx, jdCues, resumeCues, embedder, nil)
}

// AlignWithContext is Align that also attaches the resume passage behind each
// matched resume cue.
func AlignWithContext(ctx context.Context, jdCues, resumeCues []string, embedder embedding.Embedder, source ContextSource) Alignment {
	jd := clean(jdCues, 0, MaxJDCues)
	resume := clean(resumeCues, 2, MaxResumeCues)

	fallback := Alignment{
		JDCues:     jd,
		ResumeCues: resume,
		Alignments: []Match{},
		Strong:     []string{},
		Weak:       jd,
	}
	if len(jd) == 0 || len(resume) == 0 || embedder == nil {
		return fallback
	}

	jdVecs, err := embedder.Embed(ctx, jd)
	if err != nil || len(jdVecs) != len(jd) {
		return fallback
	}
	resumeVecs, err := embedder.Embed(ctx, resume)
	if err != nil || len(resumeVecs) != len(resume) {
		return fallback
	}

	out := Alignment{
		JDCues:     jd,
		ResumeCues: resume,
		Alignments: make([]Match, 0, len(jd)),
		Strong:     []string{},
		Weak:       []string{},
	}

	var total float64
	for i, cue := range jd {
		best, bestSim := -1, 0.0
		for j, vec := range resumeVecs {
			sim := embedding.Cosine(jdVecs[i], vec)
			if best < 0 || sim > bestSim {
				best, bestSim = j, sim
			}
		}
		bestSim = max(-1, min(1, bestSim))

		m := Match{JDCue: cue, ResumeCue: resume[best], Similarity: bestSim}
		if source != nil {
			if passages := source.Search(ctx, m.ResumeCue, 1); len(passages) > 0 {
				m.Context = snippet(passages[0])
			}
		}
		out.Alignments = append(out.Alignments, m)
		total += bestSim

		switch {
		case bestSim >= StrongThreshold:
			out.Strong = append(out.Strong, cue)
		case bestSim < WeakThreshold:
			out.Weak = append(out.Weak, cue)
		}
	}
	out.AverageSimilarity = total / float64(len(jd))
	return out
}

// clean trims cues, drops blanks, duplicates and cues of minLen runes or fewer,
// and caps the list.
func clean(cues []string, minLen, limit int) []string {
	seen := make(map[string]struct{}, len(cues))
	out := make([]string, 0, min(len(cues), limit))
	for _, c := range cues {
		c = strings.TrimSpace(c)
		if c == "" || len([]rune(c)) <= minLen {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out
}

func snippet(passage string) string {
	s := []rune(strings.Join(strings.Fields(passage), " "))
	if len(s) <= maxContextRunes {
		return string(s)
	}
	cut := strings.TrimRight(string(s[:maxContextRunes]), " ")
	if len(s) > contextOverflow {
		cut += "..."
	}
	return cut
}
