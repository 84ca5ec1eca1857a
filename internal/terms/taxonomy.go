package terms

import "strings"

type taxonomyEntry struct {
	canonical string
	variants  []string
}

// taxonomyEntries is ordered: when two entries share a variant ("tf"), the later
// entry owns it.
var taxonomyEntries = []taxonomyEntry{
	// languages
	{"python", []string{"python", "python3", "python 3", "py"}},
	{"javascript", []string{"javascript", "js", "ecmascript", "es6", "es2015", "es2020"}},
	{"typescript", []string{"typescript", "ts"}},
	{"java", []string{"java", "java 8", "java 11", "java 17", "jdk"}},
	{"c++", []string{"c++", "cpp", "c plus plus"}},
	{"c#", []string{"c#", "csharp", "c sharp", ".net"}},
	{"go", []string{"go", "golang"}},
	{"rust", []string{"rust", "rust lang"}},
	{"ruby", []string{"ruby", "rb"}},
	{"php", []string{"php", "php 7", "php 8"}},

	// backend frameworks
	{"django", []string{"django", "django rest framework", "drf"}},
	{"flask", []string{"flask", "flask-restful"}},
	{"fastapi", []string{"fastapi", "fast api"}},
	{"spring", []string{"spring", "spring boot", "spring framework", "spring mvc", "spring cloud"}},
	{"express", []string{"express", "express.js", "expressjs"}},
	{"nestjs", []string{"nestjs", "nest.js", "nest"}},

	// frontend frameworks
	{"react", []string{"react", "react.js", "reactjs", "react 18", "react 19"}},
	{"angular", []string{"angular", "angular 2+", "angularjs"}},
	{"vue", []string{"vue", "vue.js", "vuejs", "vue 3"}},
	{"nextjs", []string{"nextjs", "next.js", "next"}},
	{"svelte", []string{"svelte", "sveltejs"}},

	// databases
	{"postgresql", []string{"postgresql", "postgres", "psql", "pg"}},
	{"mysql", []string{"mysql", "my sql"}},
	{"mongodb", []string{"mongodb", "mongo", "mongo db"}},
	{"redis", []string{"redis", "redis cache"}},
	{"cassandra", []string{"cassandra", "apache cassandra"}},
	{"elasticsearch", []string{"elasticsearch", "elastic search", "elastic"}},

	// cloud
	{"aws", []string{"aws", "amazon web services"}},
	{"ec2", []string{"ec2", "amazon ec2", "elastic compute"}},
	{"s3", []string{"s3", "amazon s3", "simple storage service"}},
	{"lambda", []string{"lambda", "aws lambda", "amazon lambda"}},
	{"cloudformation", []string{"cloudformation", "cloud formation", "cfn"}},
	{"dynamodb", []string{"dynamodb", "dynamo db", "dynamo"}},
	{"azure", []string{"azure", "microsoft azure", "ms azure"}},
	{"gcp", []string{"gcp", "google cloud", "google cloud platform"}},

	// devops
	{"docker", []string{"docker", "containerization", "containers"}},
	{"kubernetes", []string{"kubernetes", "k8s", "k8", "kube"}},
	{"jenkins", []string{"jenkins", "jenkins ci", "jenkins ci/cd"}},
	{"terraform", []string{"terraform", "tf", "infrastructure as code", "iac"}},
	{"ansible", []string{"ansible", "ansible playbook"}},
	{"gitlab", []string{"gitlab", "gitlab ci", "gitlab ci/cd"}},
	{"github actions", []string{"github actions", "gh actions"}},

	// data science
	{"tensorflow", []string{"tensorflow", "tf", "tensor flow"}},
	{"pytorch", []string{"pytorch", "torch", "py torch"}},
	{"scikit-learn", []string{"scikit-learn", "sklearn", "scikit learn"}},
	{"pandas", []string{"pandas", "pd"}},
	{"numpy", []string{"numpy", "np"}},
	{"keras", []string{"keras"}},

	// fundamentals
	{"operating system", []string{"operating system", "operating systems", "os"}},
	{"dbms", []string{"dbms", "database management system", "database management"}},
	{"computer network", []string{"computer network", "computer networks", "networking", "cn"}},
	{"data structure", []string{"data structure", "data structures", "ds", "dsa"}},
	{"algorithm", []string{"algorithm", "algorithms", "algo"}},
	{"object oriented", []string{"oop", "object oriented", "object-oriented", "object oriented programming"}},

	// practices
	{"rest api", []string{"rest", "rest api", "restful", "restful api"}},
	{"graphql", []string{"graphql", "graph ql", "gql"}},
	{"microservices", []string{"microservices", "micro services", "microservice architecture"}},
	{"git", []string{"git", "version control", "source control"}},
	{"agile", []string{"agile", "scrum", "agile methodology"}},
}

// Taxonomy resolves skill spellings to a canonical skill name.
type Taxonomy struct {
	variants map[string][]string
	reverse  map[string]string
}

// DefaultTaxonomy is built from the static table at init and never mutated.
var DefaultTaxonomy = NewTaxonomy()

func NewTaxonomy() *Taxonomy {
	t := &Taxonomy{
		variants: make(map[string][]string, len(taxonomyEntries)),
		reverse:  make(map[string]string),
	}
	for _, e := range taxonomyEntries {
		t.variants[e.canonical] = e.variants
		for _, v := range e.variants {
			t.reverse[strings.ToLower(v)] = e.canonical
		}
	}
	return t
}

// Canonical returns the canonical skill for term, or the lowercased term itself.
func (t *Taxonomy) Canonical(term string) string {
	key := strings.ToLower(strings.TrimSpace(term))
	if c, ok := t.reverse[key]; ok {
		return c
	}
	return key
}

func (t *Taxonomy) Equivalent(a, b string) bool {
	return t.Canonical(a) == t.Canonical(b)
}

// Variants lists every known spelling of term's canonical skill.
func (t *Taxonomy) Variants(term string) []string {
	if v, ok := t.variants[t.Canonical(term)]; ok {
		return v
	}
	return []string{term}
}

// NormalizeSkills maps skills to canonical names, dropping duplicates.
func (t *Taxonomy) NormalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		c := t.Canonical(s)
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
