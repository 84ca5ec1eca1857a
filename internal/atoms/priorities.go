package atoms

import (
	"regexp"
	"strings"
)

// Priority classifies a requirement as mandatory or bonus.
type Priority string

const (
	Must Priority = "must"
	Nice Priority = "nice"
)

// markerRe finds section markers: a marker word followed by a colon within the same
// line ("Required skills:", "Nice to have:") or standing alone on its line.
var markerRe = regexp.MustCompile(`(?im)\b(requirements|required|must[- ]haves?|must|preferred|nice[- ]to[- ]haves?|bonus|plus)\b(?:[^:\n]{0,40}:|[ \t]*$)`)

// SplitPriorities separates a job description into its mandatory and bonus parts.
// Text before the first marker counts as mandatory.
func SplitPriorities(jd string) (must, nice string) {
	locs := markerRe.FindAllStringSubmatchIndex(jd, -1)
	if len(locs) == 0 {
		return strings.TrimSpace(jd), ""
	}

	var mustParts, niceParts []string
	if head := strings.TrimSpace(jd[:locs[0][0]]); head != "" {
		mustParts = append(mustParts, head)
	}
	for i, loc := range locs {
		end := len(jd)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		body := strings.TrimSpace(jd[loc[1]:end])
		if body == "" {
			continue
		}
		if markerPriority(jd[loc[2]:loc[3]]) == Nice {
			niceParts = append(niceParts, body)
		} else {
			mustParts = append(mustParts, body)
		}
	}
	return strings.Join(mustParts, "\n"), strings.Join(niceParts, "\n")
}

func markerPriority(word string) Priority {
	switch w := strings.ToLower(word); {
	case w == "preferred", w == "bonus", w == "plus", strings.HasPrefix(w, "nice"):
		return Nice
	default:
		return Must
	}
}

// Set holds the refined must and nice atoms of one job description.
type Set struct {
	Must []string `json:"must"`
	Nice []string `json:"nice"`
}

// Total is the number of atoms in both lists.
func (s Set) Total() int {
	return len(s.Must) + len(s.Nice)
}

// FromDescription is the deterministic requirement plan: the description is split
// into priorities, atoms are extracted per part and refined, and nice atoms never
// repeat a must atom.
func FromDescription(jd string, limit int) Set {
	mustText, niceText := SplitPriorities(jd)

	must, reserved := Refine(sourceSpelling(mustText, Extract(mustText, DefaultMaxAtoms)), nil, limit)
	nice, _ := Refine(sourceSpelling(niceText, Extract(niceText, DefaultMaxAtoms)), reserved, limit)
	return Set{Must: must, Nice: nice}
}

// sourceSpelling maps extracted (lowercased) atoms back to their first spelling in
// text so that validation sees capitalized acronyms and product names.
func sourceSpelling(text string, list []string) []string {
	lower := strings.ToLower(text)
	out := make([]string, len(list))
	for i, atom := range list {
		out[i] = atom
		if len(lower) != len(text) {
			continue
		}
		if idx := strings.Index(lower, atom); idx >= 0 {
			out[i] = text[idx : idx+len(atom)]
		}
	}
	return out
}
