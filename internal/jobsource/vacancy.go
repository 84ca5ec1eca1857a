package jobsource

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type Vacancy struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Area struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"area,omitempty"`
	Experience struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"experience,omitempty"`
	Employer struct {
		ID   string `json:"id,omitempty"`
		Name string `json:"name,omitempty"`
	} `json:"employer,omitempty"`
	AlternateURL string `json:"alternate_url,omitempty"`
	Description  string `json:"description,omitempty"`
	KeySkills    []struct {
		Name string `json:"name,omitempty"`
	} `json:"key_skills,omitempty"`
	Archived bool `json:"archived,omitempty"`
}

// Skills returns the key skills, trimmed and without duplicates.
func (v *Vacancy) Skills() []string {
	seen := make(map[string]struct{}, len(v.KeySkills))
	out := make([]string, 0, len(v.KeySkills))
	for _, s := range v.KeySkills {
		name := strings.TrimSpace(s.Name)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

// JobDescription renders the vacancy as plain text: title, description and the key
// skills list.
func (v *Vacancy) JobDescription() string {
	var b strings.Builder
	if v.Name != "" {
		b.WriteString(v.Name)
		b.WriteString("\n\n")
	}
	b.WriteString(PlainText(v.Description))
	if skills := v.Skills(); len(skills) > 0 {
		b.WriteString("\n\nKey skills: ")
		b.WriteString(strings.Join(skills, ", "))
	}
	return strings.TrimSpace(b.String())
}

var spaceRe = regexp.MustCompile(`\s+`)

var blockTags = map[string]bool{
	"p": true, "div": true, "li": true, "ul": true, "ol": true, "table": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true, "blockquote": true,
}

// PlainText converts vacancy HTML into text with one block or list item per line.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}

	var b strings.Builder
	writeText(&b, doc.Find("body"))

	lines := strings.Split(b.String(), "\n")
	cleaned := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

func writeText(b *strings.Builder, sel *goquery.Selection) {
	sel.Contents().Each(func(_ int, s *goquery.Selection) {
		name := goquery.NodeName(s)
		switch {
		case name == "#text":
			b.WriteString(spaceRe.ReplaceAllString(s.Text(), " "))
		case name == "br":
			b.WriteString("\n")
		case name == "script" || name == "style":
		case blockTags[name]:
			b.WriteString("\n")
			if name == "li" {
				b.WriteString("• ")
			}
			writeText(b, s)
			b.WriteString("\n")
		default:
			writeText(b, s)
		}
	})
}
