package terms

// abbreviations pairs a term with its expansions. Entries are symmetric after
// class construction, so listing one direction is enough.
var abbreviations = map[string][]string{
	// computer science fundamentals
	"os":    {"operating systems", "operating system"},
	"dbms":  {"database management systems", "database management system"},
	"cn":    {"computer networks", "computer networking"},
	"ds":    {"data structures"},
	"algo":  {"algorithms"},
	"oops":  {"object oriented programming", "oop"},
	"oop":   {"object oriented programming", "oops"},
	"vcs":   {"version control system"},
	"tdd":   {"test driven development"},
	"bdd":   {"behavior driven development"},
	"api":   {"application programming interface"},
	"rest":  {"restful", "rest api", "restful api"},
	"ci/cd": {"continuous integration continuous deployment", "ci cd", "cicd"},

	// languages
	"js": {"javascript"},
	"ts": {"typescript"},
	"py": {"python"},

	// frameworks
	"react":  {"reactjs", "react.js"},
	"node":   {"nodejs", "node.js"},
	"nextjs": {"next.js"},
	"vue":    {"vuejs", "vue.js"},

	// databases
	"postgres": {"postgresql"},
	"mongo":    {"mongodb"},
	"db":       {"database"},
	"sql":      {"structured query language"},
	"nosql":    {"no-sql", "no sql"},

	// cloud and devops
	"aws": {"amazon web services"},
	"gcp": {"google cloud platform"},
	"k8s": {"kubernetes"},

	// machine learning
	"ml":  {"machine learning"},
	"ai":  {"artificial intelligence"},
	"dl":  {"deep learning"},
	"nlp": {"natural language processing"},
	"cv":  {"computer vision"},

	// platforms and web
	"ios":   {"iphone os"},
	"html":  {"hypertext markup language"},
	"css":   {"cascading style sheets"},
	"http":  {"hypertext transfer protocol"},
	"https": {"hypertext transfer protocol secure"},
}

// synonyms maps a base skill to its common spellings and product variants.
var synonyms = map[string][]string{
	"react":      {"react.js", "reactjs", "react 18", "react 17", "react 16"},
	"node":       {"node.js", "nodejs"},
	"python":     {"python 3", "python 3.x", "python 2", "py"},
	"java":       {"java 8", "java 11", "java 17", "jdk"},
	"docker":     {"docker container", "docker compose"},
	"kubernetes": {"k8s", "k8s cluster"},
	"postgresql": {"postgres", "postgres db"},
	"mongodb":    {"mongo", "mongo db"},
	"aws":        {"amazon web services", "aws cloud"},
	"azure":      {"microsoft azure", "azure cloud"},
	"spring":     {"spring boot", "spring framework", "spring mvc"},
	"django":     {"django rest", "django rest framework"},
	"flask":      {"flask api"},
}

// genericWords are dropped by ExtractSkills.
var genericWords = toSet(
	"experience", "years", "knowledge", "understanding", "ability", "skills",
	"work", "working", "projects", "project", "development", "developer",
	"engineer", "engineering", "good", "strong", "excellent", "basic",
	"advanced", "proficient", "expert", "familiar", "familiarity",
	"required", "preferred", "must", "should", "nice", "have", "has",
	"using", "used", "use", "apply", "application", "implement", "implementation",
	"design", "develop", "create", "build", "maintain", "support",
	"team", "teams", "individual", "company", "organization",
	"role", "position", "job", "responsibilities", "duties",
	"bachelor", "master", "degree", "education", "certification",
	"plus", "bonus", "additional", "extra", "other", "various",
	"including", "such", "related", "relevant", "similar",
	"minimum", "maximum", "with", "without", "and", "or", "but", "the",
	"in", "on", "at", "for", "to", "from", "by", "of",
)

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
