package atoms

import (
	"strings"

	"github.com/spigell/hh-screener/internal/textproc"
)

// DefaultRefineLimit caps Refine when the caller passes a non-positive limit.
const DefaultRefineLimit = 50

// Canonical returns the deduplication key of an atom: "OS" and
// "Operating Systems" both become "operating system".
func Canonical(atom string) string {
	s := textproc.Normalize(atom)
	if s == "" {
		return ""
	}
	if c, ok := canonicalForms[s]; ok {
		return c
	}
	joined := strings.Join(tokenize(s), " ")
	if c, ok := canonicalForms[joined]; ok {
		return c
	}
	return joined
}

// Refine drops invalid atoms and merges atoms sharing a canonical form, keeping the
// shortest spelling at the position of the first occurrence. Validity is judged on
// the atom as given, so a source spelling such as "Django" keeps its case signal;
// kept atoms are normalized. Atoms whose canonical
// form is already reserved are skipped. The returned set is reserved extended with
// the canonical forms of the kept atoms; the input set is not modified.
func Refine(list []string, reserved map[string]struct{}, limit int) ([]string, map[string]struct{}) {
	if limit <= 0 {
		limit = DefaultRefineLimit
	}

	out := make(map[string]struct{}, len(reserved)+len(list))
	for k := range reserved {
		out[k] = struct{}{}
	}

	best := make(map[string]string)
	var order []string
	for _, atom := range list {
		if !IsValid(atom) {
			continue
		}
		atom = textproc.Normalize(atom)
		canonical := Canonical(atom)
		if canonical == "" {
			continue
		}
		if _, taken := reserved[canonical]; taken {
			continue
		}
		current, ok := best[canonical]
		if !ok {
			best[canonical] = atom
			order = append(order, canonical)
			continue
		}
		if len(atom) < len(current) {
			best[canonical] = atom
		}
	}

	if len(order) > limit {
		order = order[:limit]
	}
	refined := make([]string, 0, len(order))
	for _, key := range order {
		refined = append(refined, best[key])
		out[key] = struct{}{}
	}
	return refined, out
}
