package atoms

// genericTokens never make an atom on their own.
var genericTokens = toSet(
	// experience and skill descriptors
	"experience", "experiences", "experienced", "skill", "skills", "skilled", "tools", "tool", "technologies",
	"technology", "knowledge", "knowledgeable", "projects", "project", "responsibilities", "responsibility",
	"requirements", "requirement", "required", "prefer", "preferred", "preferably",
	// roles
	"engineer", "engineering", "developer", "development", "analyst", "analysis", "internship", "intern",
	"fresher", "graduate", "undergraduate", "candidate", "candidates", "professional", "professionals",
	"programmer", "programming", "designer", "designing", "architect", "architecting", "lead", "leader",
	"manager", "management", "supervisor", "associate", "junior", "senior", "executive", "director",
	// qualifiers
	"strong", "stronger", "strongest", "good", "better", "best", "excellent", "exceptional", "outstanding",
	"ability", "abilities", "able", "capable", "proficient", "proficiency", "competent", "competency",
	"familiar", "familiarity", "comfortable", "understanding", "understands", "comprehension",
	"adequate", "sufficient", "necessary", "basic", "fundamental", "keen", "expert", "novice",
	// verbs
	"work", "working", "worked", "team", "teams", "teaming", "communication", "communicate", "communicating",
	"problem", "problems", "solving", "solve", "solved", "teamwork", "leadership", "leading",
	"manage", "managing", "managed", "collaborate", "collaboration", "collaborating",
	"develop", "developing", "developed", "design", "designed", "build", "building", "built",
	"create", "creating", "created", "implement", "implementing", "implemented", "maintain", "maintaining",
	"support", "supporting", "supported", "help", "helping", "helped", "assist", "assisting", "assisted",
	"drive", "driving", "driven", "track", "tracking", "tracked", "monitor", "monitoring", "monitored",
	"report", "reporting", "reported", "analyze", "analyzing", "analyzed", "analyse", "analysing", "analysed",
	"evaluate", "evaluating", "evaluated", "assess", "assessing", "assessed", "review", "reviewing", "reviewed",
	"test", "testing", "tested", "ensure", "ensuring", "ensured", "provide", "providing", "provided",
	"handle", "handling", "coordinate", "use", "using", "apply", "applying",
	// generic concepts
	"nice", "have", "having", "foundation", "foundations", "basics", "concept",
	"concepts", "process", "processes", "practice", "practices", "methodology", "methodologies", "principles",
	"principle", "background", "backgrounds", "exposure", "competencies",
	"capability", "capabilities", "qualification", "qualifications", "plus", "bonus", "ideal", "ideally",
	"desirable", "useful", "helpful", "important", "need", "needs",
	// time and measurement
	"year", "years", "month", "months", "level", "levels", "degree", "minimum", "maximum", "at", "least",
	"circa", "period", "duration", "time", "date", "range", "window", "around", "approximately",
	// connectors
	"with", "without", "used", "via", "through", "across", "within", "including", "such", "like",
	"related", "relevant", "appropriate", "suitable", "equivalent", "similar", "other", "others", "various",
	"multiple", "several", "any", "all", "some", "both", "either", "neither", "each", "every", "general",
	"and", "or", "but", "nor", "yet", "so", "in", "on", "by", "to", "from", "for", "during", "before", "after",
	"as", "of", "into", "out", "up", "down", "over", "under", "above", "below", "between", "among", "about",
	// weak descriptors
	"thing", "things", "stuff", "etc", "otherwise", "example", "examples", "illustration",
	"instance", "component", "element", "aspect", "feature", "characteristic", "trait",
	// negations
	"not", "no", "non", "un", "im", "ir", "dis", "de",
)

// blockedPhrases reject any candidate containing them.
var blockedPhrases = []string{
	// soft skills
	"nice to have", "nice-to-have", "nice to know", "good to have", "good-to-have", "would be nice",
	"good knowledge", "strong knowledge", "strong foundation", "solid foundation", "deep understanding",
	"computer foundations", "computer foundation", "soft skills", "strong communication", "interpersonal skills",
	"good communication", "excellent communication", "communication skills", "problem solving skills",
	"problem-solving skills", "analytical skills", "critical thinking", "attention to detail",
	"leadership skills", "teamwork skills", "collaborative", "collaboration", "team player",
	// requirement boilerplate
	"experience with", "experience in", "knowledge of", "understanding of", "familiarity with",
	"exposure to", "working knowledge", "hands-on experience", "practical experience", "proven experience",
	"ability to", "able to", "capable of", "proficiency in", "proficient in", "competency in", "skilled in",
	"expertise in", "background in", "track record", "demonstrated ability", "strong understanding",
	"some experience", "basic knowledge", "fundamental understanding", "working familiarity",
	// responsibilities
	"responsible for", "work with", "collaborate with", "partner with", "interact with", "communicate with",
	"develop and", "design and", "build and", "create and", "implement and", "maintain and", "support and",
	"work closely", "team environment", "fast-paced environment", "dynamic environment", "agile environment",
	"must be able to", "should be able to", "required to", "expected to", "responsible to", "as needed",
	// vague qualifiers
	"preferred qualifications", "nice to haves", "bonus points", "plus points", "additional skills",
	"good understanding", "solid grasp", "thorough understanding", "comprehensive knowledge",
	"general knowledge", "basic understanding", "foundational knowledge", "core concepts",
	"advanced understanding", "deep knowledge", "extensive experience", "broad background",
	"familiar with", "basic familiarity", "general familiarity", "some knowledge of",
	"working in", "working on", "training in",
	"introduction to", "introduction", "familiarity", "minimum knowledge",
	"basic skill", "intermediate skill", "advanced skill", "expert level", "mastery of",
	"can demonstrate", "able to demonstrate", "proven ability to show",
	"will be required", "is required", "must have", "should have",
	"highly desirable", "would be beneficial", "helpful to have", "beneficial to have",
	"key skill", "key competency", "core skill", "primary skill", "secondary skill",
	"important role", "critical role", "essential role", "important function",
}

// weakSingles are rejected when they are the only meaningful token.
var weakSingles = toSet(
	"foundation", "foundations", "knowledge", "understanding", "experience", "skill", "skills", "skillset",
	"competency", "competencies", "capability", "capabilities", "background", "exposure", "proficiency",
	"familiarity", "expertise", "qualification", "qualifications", "certification", "certifications",
	"training", "education", "degree", "masters", "bachelor", "phd", "diploma", "course", "courses",
	"tool", "tools", "technology", "technologies", "technique", "techniques", "method", "methods",
	"ability", "abilities", "trait", "traits", "characteristic", "characteristics",
	"requirement", "requirements", "specification", "specifications", "attribute", "attributes",
	"strength", "strengths", "weakness", "weaknesses", "advantage", "disadvantages",
	"area", "areas", "domain", "domains", "field", "fields", "practice", "practices",
	"role", "roles", "position", "positions", "level", "levels", "tier", "tiers",
	"type", "types", "category", "categories", "class", "classes", "group", "groups",
	"aspect", "aspects", "element", "elements", "component", "components", "feature", "features",
	"duty", "duties", "function", "functions", "responsibility", "responsibilities",
	"item", "items", "thing", "things", "stuff", "matter", "matters", "subject", "subjects",
)

// leadingAdjectives disqualify a candidate that starts with them.
var leadingAdjectives = toSet(
	"strong", "good", "excellent", "basic", "advanced", "intermediate", "solid", "sound", "robust",
	"deep", "thorough", "comprehensive", "extensive", "broad", "general", "specific", "detailed",
	"proven", "demonstrated", "hands-on", "practical", "theoretical", "applied", "relevant", "appropriate",
	"preferred", "ideal", "perfect", "optimal", "suitable", "fit", "fitting",
	"better", "best", "superior", "inferior", "poor", "weak", "powerful",
	"fundamental", "core", "central", "primary", "secondary", "main", "major", "minor",
	"essential", "critical", "crucial", "vital", "important", "necessary", "optional", "required",
	"new", "old", "modern", "legacy", "recent", "current", "latest", "outdated",
	"simple", "complex", "complicated", "easy", "difficult", "hard", "straightforward",
	"effective", "efficient", "productive", "reliable", "stable", "consistent",
	"irrelevant", "applicable", "inapplicable", "unsuitable",
)

// shortAcronyms are accepted as single-token atoms.
var shortAcronyms = toSet("api", "rest", "graphql", "sql", "nosql", "oop", "tdd", "ci", "cd", "ml", "ai", "nlp")

// canonicalForms merges abbreviations with their full forms for deduplication.
var canonicalForms = map[string]string{
	// computer science fundamentals
	"os":                          "operating system",
	"operating systems":           "operating system",
	"dbms":                        "database management system",
	"database management systems": "database management system",
	"cn":                          "computer network",
	"computer networks":           "computer network",
	"ds":                          "data structure",
	"data structures":             "data structure",
	"algo":                        "algorithm",
	"algorithms":                  "algorithm",
	"oop":                         "object oriented programming",
	"oops":                        "object oriented programming",
	"object oriented":             "object oriented programming",

	// cloud and devops
	"aws":                 "amazon web services",
	"amazon web services": "amazon web services",
	"gcp":                 "google cloud platform",
	"google cloud":        "google cloud platform",
	"k8s":                 "kubernetes",
	"ci cd":               "continuous integration",
	"ci/cd":               "continuous integration",

	// databases
	"postgres":   "postgresql",
	"postgresql": "postgresql",
	"mongo":      "mongodb",
	"mongodb":    "mongodb",

	// languages
	"js":         "javascript",
	"javascript": "javascript",
	"ts":         "typescript",
	"typescript": "typescript",
	"py":         "python",

	// frameworks
	"reactjs":  "react",
	"react.js": "react",
	"nodejs":   "node",
	"node.js":  "node",
	"vuejs":    "vue",
	"vue.js":   "vue",

	// apis
	"rest api":    "rest",
	"restful":     "rest",
	"rest apis":   "rest",
	"graphql api": "graphql",

	// ml and ai
	"ml":  "machine learning",
	"ai":  "artificial intelligence",
	"nlp": "natural language processing",
	"cv":  "computer vision",
}

// techExpansions let an abbreviation in a requirement match its spelled-out words.
var techExpansions = map[string][]string{
	"ai":     {"artificial", "intelligence"},
	"ml":     {"machine", "learning"},
	"dl":     {"deep", "learning"},
	"nlp":    {"natural", "language", "processing"},
	"cv":     {"computer", "vision"},
	"db":     {"database"},
	"api":    {"application", "programming", "interface"},
	"ci":     {"continuous", "integration"},
	"cd":     {"continuous", "deployment"},
	"devops": {"development", "operations"},
	"aws":    {"amazon", "web", "services"},
	"gcp":    {"google", "cloud", "platform"},
	"k8s":    {"kubernetes"},
}

// chunkStopWords end a noun-phrase-like chunk.
var chunkStopWords = toSet(
	"a", "an", "the", "this", "that", "these", "those", "our", "your", "their", "its", "his", "her",
	"we", "you", "they", "it", "he", "she", "i", "us", "them", "who", "which", "what", "whom",
	"is", "are", "was", "were", "be", "been", "being", "am", "will", "would", "shall", "should",
	"can", "could", "may", "might", "must", "do", "does", "did", "has", "have", "had",
	"and", "or", "but", "nor", "if", "then", "than", "so", "because", "while", "when", "where",
	"with", "without", "in", "on", "at", "by", "to", "from", "for", "of", "into", "onto", "over",
	"under", "about", "across", "through", "via", "as", "per", "within", "between", "among",
	"also", "very", "well", "not", "no", "all", "any", "some", "such",
)

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
