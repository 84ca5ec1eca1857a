package competency

// Competency is a capability bundle: anchor terms plus the ecosystem around them.
type Competency struct {
	ID           string
	Core         []string
	Frameworks   []string
	ProjectVerbs []string
	Queries      []string
}

var buildVerbs = []string{"built", "developed", "implemented", "designed", "maintained", "deployed"}

// Catalog is ordered; MapAtoms returns the first competency that matches.
var Catalog = []Competency{
	{
		ID:   "java_ecosystem",
		Core: []string{"java", "java 8", "java 11", "java 17"},
		Frameworks: []string{
			"spring", "spring boot", "spring cloud", "spring mvc",
			"hibernate", "jpa", "jakarta", "microservices", "rest api",
			"maven", "gradle", "junit", "mockito", "kafka",
		},
		ProjectVerbs: buildVerbs,
		Queries:      []string{"java spring boot project", "java microservices", "spring hibernate"},
	},
	{
		ID:   "python_backend",
		Core: []string{"python", "python 3", "python 3.x"},
		Frameworks: []string{
			"django", "django rest framework", "flask", "fastapi",
			"pandas", "numpy", "celery", "sqlalchemy", "pytest",
		},
		ProjectVerbs: buildVerbs,
		Queries:      []string{"python django api", "fastapi production", "flask project"},
	},
	{
		ID:           "node_backend",
		Core:         []string{"node", "node.js", "nodejs"},
		Frameworks:   []string{"express", "nest", "nestjs", "typescript", "prisma", "sequelize", "jest"},
		ProjectVerbs: buildVerbs,
		Queries:      []string{"node express api", "node microservices", "nestjs project"},
	},
	{
		ID:           "frontend_js",
		Core:         []string{"javascript", "typescript"},
		Frameworks:   []string{"react", "react 18", "nextjs", "next.js", "angular", "vue", "redux", "vite", "webpack"},
		ProjectVerbs: buildVerbs,
		Queries:      []string{"react project", "typescript react", "nextjs production"},
	},
	{
		ID:   "devops_cloud",
		Core: []string{"docker", "kubernetes", "k8s"},
		Frameworks: []string{
			"ci/cd", "jenkins", "github actions", "gitlab ci", "terraform", "ansible", "helm",
			"aws", "azure", "gcp", "prometheus", "grafana",
		},
		ProjectVerbs: []string{"deployed", "automated", "scaled", "containerized", "orchestrated"},
		Queries:      []string{"kubernetes deployment", "terraform ci/cd", "docker production"},
	},
	{
		ID:   "data_ml",
		Core: []string{"machine learning", "ml", "ai", "deep learning"},
		Frameworks: []string{
			"scikit-learn", "sklearn", "tensorflow", "pytorch", "keras", "xgboost", "lightgbm",
			"mlflow", "airflow", "sagemaker", "vertex ai",
		},
		ProjectVerbs: []string{"trained", "deployed", "optimized", "built", "developed"},
		Queries:      []string{"ml production", "tensorflow deployment", "pytorch project"},
	},
}
