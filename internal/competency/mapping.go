package competency

import (
	"regexp"

	"github.com/spigell/hh-screener/internal/textproc"
)

// Term kinds reported by MapAtoms.
const (
	KindCore      = "core"
	KindFramework = "framework"
)

type Mapping struct {
	Competency string `json:"competency"`
	Kind       string `json:"kind"`
}

type matcher struct {
	re   *regexp.Regexp
	id   string
	kind string
}

// matchers follow catalog order with core terms before frameworks.
var matchers = buildMatchers(Catalog)

func buildMatchers(catalog []Competency) []matcher {
	var out []matcher
	for _, c := range catalog {
		for _, t := range c.Core {
			out = append(out, matcher{re: termRe(t), id: c.ID, kind: KindCore})
		}
		for _, t := range c.Frameworks {
			out = append(out, matcher{re: termRe(t), id: c.ID, kind: KindFramework})
		}
	}
	return out
}

// termRe matches a term bounded by non-alphanumerics so that "ai" does not hit "email".
func termRe(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|[^a-z0-9])` + regexp.QuoteMeta(textproc.Normalize(term)) + `(?:$|[^a-z0-9])`)
}

// MapAtoms assigns requirement atoms to the first competency whose term appears in
// them. Unmapped atoms are left out.
func MapAtoms(list []string) map[string]Mapping {
	out := make(map[string]Mapping)
	for _, atom := range list {
		norm := textproc.Normalize(atom)
		if norm == "" {
			continue
		}
		for _, m := range matchers {
			if m.re.MatchString(norm) {
				out[atom] = Mapping{Competency: m.id, Kind: m.kind}
				break
			}
		}
	}
	return out
}
