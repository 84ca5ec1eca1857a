// Package terms decides whether two technical terms denote the same skill.
//
// Equivalence classes are built once from the abbreviation and synonym tables
// and closed transitively, so lookups are a map access per term.
package terms

import (
	"regexp"
	"sort"
	"strings"

	"github.com/spigell/hh-screener/internal/textproc"
)

var (
	versionSuffixRe = regexp.MustCompile(`\s*\d+(\.\d+)*\s*$`)
	punctRe         = regexp.MustCompile(`[^\w\s+#.-]`)
)

// classes maps every normalized member to the sorted member list of its class.
var classes = buildClasses()

// Normalize lowercases and trims a term, drops a trailing version number,
// replaces punctuation other than "+ # . -" with spaces and collapses whitespace.
func Normalize(term string) string {
	if strings.TrimSpace(term) == "" {
		return ""
	}
	term = strings.ToLower(strings.TrimSpace(textproc.Fold(term)))
	term = versionSuffixRe.ReplaceAllString(term, "")
	term = punctRe.ReplaceAllString(term, " ")
	return strings.Join(strings.Fields(term), " ")
}

// EquivalentForms returns the normalized term, its lowercased raw spelling and every
// member of the equivalence class it belongs to.
func EquivalentForms(term string) map[string]struct{} {
	forms := make(map[string]struct{})
	normalized := Normalize(term)
	if normalized == "" {
		return forms
	}

	forms[normalized] = struct{}{}
	forms[strings.ToLower(strings.TrimSpace(term))] = struct{}{}
	for _, member := range classes[normalized] {
		forms[member] = struct{}{}
	}
	return forms
}

// Match reports whether two terms denote the same skill. Empty terms never match.
func Match(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	fa := EquivalentForms(a)
	for form := range EquivalentForms(b) {
		if _, ok := fa[form]; ok {
			return true
		}
	}
	return false
}

// Deduplicate removes terms whose equivalent forms were already seen, keeping
// the first occurrence.
func Deduplicate(list []string) []string {
	if len(list) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(list))
	for _, item := range list {
		forms := EquivalentForms(item)
		if len(forms) == 0 {
			continue
		}
		dup := false
		for f := range forms {
			if _, ok := seen[f]; ok {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		out = append(out, item)
		for f := range forms {
			seen[f] = struct{}{}
		}
	}
	return out
}

// buildClasses runs union-find over both tables.
func buildClasses() map[string][]string {
	parent := make(map[string]string)

	var find func(string) string
	find = func(x string) string {
		p, ok := parent[x]
		if !ok {
			parent[x] = x
			return x
		}
		if p == x {
			return x
		}
		root := find(p)
		parent[x] = root
		return root
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		// deterministic root keeps the closure stable across runs
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}

	addTable := func(table map[string][]string) {
		for key, values := range table {
			k := Normalize(key)
			find(k)
			for _, v := range values {
				nv := Normalize(v)
				union(k, nv)
				lower := strings.ToLower(v)
				if lower != nv {
					union(k, lower)
				}
			}
		}
	}
	addTable(abbreviations)
	addTable(synonyms)

	grouped := make(map[string][]string)
	for member := range parent {
		root := find(member)
		grouped[root] = append(grouped[root], member)
	}

	out := make(map[string][]string, len(parent))
	for _, members := range grouped {
		sort.Strings(members)
		for _, m := range members {
			out[m] = members
		}
	}
	return out
}
