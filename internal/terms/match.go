package terms

import (
	"regexp"
	"strings"
)

var skillWordRe = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9+#.]+`)

// RequirementMatch splits job requirements into those found in the resume and
// those missing, plus resume skills the job did not ask for.
type RequirementMatch struct {
	Matched    []string `json:"matched"`
	Missing    []string `json:"missing"`
	Additional []string `json:"additional"`
}

// MatchRequirements compares requirements against resume skills using term
// equivalence, falling back to a substring search of every equivalent form in
// the resume text.
func MatchRequirements(requirements, resumeSkills []string, resumeText string) RequirementMatch {
	var matched, missing []string

	haystack := strings.ToLower(resumeText)
	for _, req := range requirements {
		found := false
		for _, skill := range resumeSkills {
			if Match(req, skill) {
				found = true
				break
			}
		}

		if !found && haystack != "" {
			for form := range EquivalentForms(req) {
				if form != "" && strings.Contains(haystack, form) {
					found = true
					break
				}
			}
		}

		if found {
			matched = append(matched, req)
		} else {
			missing = append(missing, req)
		}
	}

	var additional []string
	for _, skill := range resumeSkills {
		inJob := false
		for _, req := range requirements {
			if Match(skill, req) {
				inJob = true
				break
			}
		}
		if !inJob {
			additional = append(additional, skill)
		}
	}

	return RequirementMatch{
		Matched:    Deduplicate(matched),
		Missing:    Deduplicate(missing),
		Additional: Deduplicate(additional),
	}
}

// ExtractSkills pulls skill-like words out of free text, lowercased and in order
// of first appearance. Generic words are dropped.
func ExtractSkills(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, word := range skillWordRe.FindAllString(text, -1) {
		w := strings.TrimRight(strings.ToLower(word), ".")
		if len(w) < 2 {
			continue
		}
		if _, ok := genericWords[w]; ok {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}
