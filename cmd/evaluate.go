package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-screener/internal/ai"
	"github.com/spigell/hh-screener/internal/ai/gemini"
	"github.com/spigell/hh-screener/internal/competency"
	"github.com/spigell/hh-screener/internal/coverage"
	"github.com/spigell/hh-screener/internal/evidence"
	"github.com/spigell/hh-screener/internal/jobsource"
	"github.com/spigell/hh-screener/internal/logger"
	"github.com/spigell/hh-screener/internal/metrics"
	"github.com/spigell/hh-screener/internal/screening"
	"github.com/spigell/hh-screener/internal/secrets"
	"github.com/spigell/hh-screener/internal/vectorstore"
)

const (
	PromptExit         = "Exit"
	PromptReportByTier = "Report by tier"
	PromptDetails      = "Show evaluation details"
	PromptDumpToFile   = "Dump evaluations to file"
	PromptBack         = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptReportByTier, PromptDetails, PromptDumpToFile, PromptExit},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score resumes against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		evaluate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().String("jd", "", "a file with the job description")
	evaluateCmd.Flags().String("vacancy", "", "hh.ru vacancy id to use as the job description")
	evaluateCmd.Flags().StringArrayP("resume", "r", nil, "a resume file, can be repeated")
	evaluateCmd.Flags().BoolP("auto-approve", "y", false, "do not ask what to do with the results, dump them to a file")
	evaluateCmd.Flags().String("metrics-file", "", "write prometheus metrics to this textfile")

	evaluateCmd.MarkFlagsMutuallyExclusive("jd", "vacancy")
	evaluateCmd.MarkFlagsOneRequired("jd", "vacancy")
	evaluateCmd.MarkFlagRequired("resume")

	viper.BindPFlag("metrics-file", evaluateCmd.Flags().Lookup("metrics-file"))
}

func evaluate(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	jdFile, _ := cmd.Flags().GetString("jd")
	vacancyID, _ := cmd.Flags().GetString("vacancy")
	job, err := loadJob(ctx, config, jdFile, vacancyID, logger)
	if err != nil {
		logger.Fatal("loading the job description", zap.Error(err))
	}

	paths, _ := cmd.Flags().GetStringArray("resume")
	resumes, err := loadResumes(paths)
	if err != nil {
		logger.Fatal("loading resumes", zap.Error(err))
	}

	m := metrics.New()
	deps, closeDeps, err := buildDeps(ctx, config, logger, m)
	if err != nil {
		logger.Fatal("preparing the screener", zap.Error(err))
	}
	defer closeDeps()

	logger.Info("starting the evaluation", zap.String("job", job.Name), zap.Int("resumes", len(resumes)))

	evals := screening.New(config.Screening, deps).EvaluateMany(ctx, job, resumes)

	for _, s := range screening.Summaries(evals) {
		logger.Info("evaluated",
			zap.String("resume", s.Resume),
			zap.Float64("score", s.Score),
			zap.String("tier", s.Tier),
			zap.String("must_met", s.MustMet),
		)
	}

	if config.MetricsFile != "" {
		if err := m.WriteToTextfile(config.MetricsFile); err != nil {
			logger.Warn("writing metrics", zap.Error(err), zap.String("filename", config.MetricsFile))
		}
	}

	if approve, _ := cmd.Flags().GetBool("auto-approve"); approve {
		if err := handleAction(PromptDumpToFile, logger, evals); err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, evals); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, evals []*screening.Evaluation) error {
	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportByTier:
		pretty, _ := json.MarshalIndent(screening.ReportByTier(evals), "", "  ")
		logger.Info(string(pretty), zap.Int("evaluations count", len(evals)))
		return nil
	case PromptDetails:
		return showDetails(logger, evals)
	case PromptDumpToFile:
		filename, err := screening.DumpToTmpFile(evals)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func showDetails(logger *zap.Logger, evals []*screening.Evaluation) error {
	items := make([]string, 0, len(evals)+1)
	for _, e := range evals {
		items = append(items, detailsLabel(e))
	}

	detailsPrompt := promptui.Select{
		Label: "Choose an evaluation and press ENTER",
		Items: append(items, PromptBack),
	}

	idx, selected, err := detailsPrompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	pretty, err := json.MarshalIndent(evals[idx], "", "  ")
	if err != nil {
		return fmt.Errorf("marshal evaluation %s: %w", evals[idx].ID, err)
	}
	logger.Info(string(pretty), zap.String("resume", evals[idx].Resume))
	return nil
}

func detailsLabel(e *screening.Evaluation) string {
	return fmt.Sprintf("%.1f %s / %s", e.FinalScore, e.Tier, e.Resume)
}

// loadJob reads the job description from a file or fetches it from hh.ru.
func loadJob(ctx context.Context, config *Config, jdFile, vacancyID string, logger *zap.Logger) (screening.Job, error) {
	if jdFile != "" {
		data, err := os.ReadFile(jdFile)
		if err != nil {
			return screening.Job{}, fmt.Errorf("reading job description: %w", err)
		}
		return screening.Job{Name: filepath.Base(jdFile), Description: string(data)}, nil
	}

	if strings.TrimSpace(vacancyID) == "" {
		return screening.Job{}, errors.New("either a job description file or a vacancy id is required")
	}

	token, err := resolveToken(config)
	if err != nil {
		logger.Warn("fetching the vacancy anonymously",
			zap.Error(err),
			zap.String("hint", "set HH_TOKEN_FILE environment variable or the 'hh.token-file' key in the configuration file"),
		)
	}

	hh := jobsource.New(logger, token)
	if config.HH != nil && config.HH.UserAgent != "" {
		hh.UserAgent = config.HH.UserAgent
	}

	vacancy, err := hh.Vacancy(ctx, vacancyID)
	if err != nil {
		return screening.Job{}, err
	}

	logger.Info("got the vacancy",
		zap.String("vacancy_id", vacancy.ID),
		zap.String("vacancy_name", vacancy.Name),
		zap.String("employer", vacancy.Employer.Name),
	)

	return screening.Job{
		Name:        vacancy.Name,
		Description: vacancy.JobDescription(),
		Cues:        vacancy.Skills(),
	}, nil
}

func loadResumes(paths []string) ([]screening.Document, error) {
	docs := make([]screening.Document, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading resume: %w", err)
		}
		docs = append(docs, screening.Document{Name: filepath.Base(path), Text: string(data)})
	}
	return docs, nil
}

func resolveToken(config *Config) (string, error) {
	if config == nil || config.HH == nil || strings.TrimSpace(config.HH.TokenFile) == "" {
		return "", errors.New("headhunter token file is not configured")
	}

	return secrets.Load(secrets.Source{
		Name: "headhunter token",
		File: config.HH.TokenFile,
	})
}

// buildDeps wires the optional AI layer and the Qdrant index. The returned func
// releases what was opened.
func buildDeps(ctx context.Context, config *Config, log *zap.Logger, m *metrics.Metrics) (screening.Deps, func(), error) {
	deps := screening.Deps{Logger: log, Metrics: m}
	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("closing", zap.Error(err))
			}
		}
	}

	var verifier ai.CompetencyVerifier
	if config.AI != nil && config.AI.Enabled {
		if err := wireAI(ctx, config, log, m, &deps, &verifier); err != nil {
			return deps, closeAll, err
		}
	}
	deps.Competency = competency.NewScorer(verifier, log)

	if config.Qdrant != nil && config.Qdrant.URL != "" {
		store, err := vectorstore.New(*config.Qdrant, log)
		if err != nil {
			return deps, closeAll, fmt.Errorf("building qdrant store: %w", err)
		}
		closers = append(closers, store.Close)
		deps.NewIndex = func() evidence.Index { return store.Index() }
		log.Info("segments are indexed in qdrant", zap.String("url", config.Qdrant.URL))
	}

	return deps, closeAll, nil
}

func wireAI(ctx context.Context, config *Config, log *zap.Logger, m *metrics.Metrics, deps *screening.Deps, verifier *ai.CompetencyVerifier) error {
	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	if provider != "" && provider != "gemini" {
		return fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}
	cfg := config.AI.Gemini

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
	}

	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return err
	}

	generator, err := gemini.NewGenerator(client, gemini.GeneratorOptions{
		Model:       cfg.Model,
		MaxRetries:  cfg.MaxRetries,
		Temperature: cfg.Temperature,
	}, log)
	if err != nil {
		return err
	}
	genLogger := logger.WithFields(logger.WithCommonFields(log, "gemini", generator.Model()),
		zap.Int("ai_retry_attempts", cfg.MaxRetries),
	)

	if cfg.Adjudicate {
		adjudicator := gemini.NewAdjudicator(generator, genLogger, cfg.MaxLogLength)
		deps.Coverage = coverage.New(adjudicator, config.Screening.Coverage, log, m)
	}
	if cfg.Plan {
		deps.Planner = gemini.NewPlanner(generator, genLogger, cfg.MaxLogLength)
	}
	if cfg.Verify {
		*verifier = gemini.NewVerifier(generator, genLogger)
	}
	if cfg.Embed {
		embedder, err := gemini.NewEmbedder(client, cfg.EmbeddingModel, log)
		if err != nil {
			return err
		}
		deps.Embedder = embedder
	}

	log.Info("ai enhancements enabled",
		zap.String("provider", "gemini"),
		zap.Bool("adjudicate", cfg.Adjudicate),
		zap.Bool("plan", cfg.Plan),
		zap.Bool("verify", cfg.Verify),
		zap.Bool("embed", cfg.Embed),
	)
	return nil
}
