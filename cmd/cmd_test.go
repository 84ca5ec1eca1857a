package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/hh-screener/internal/screening"
)

func TestDecodeConfig(t *testing.T) {
	settings := map[string]any{
		"screening": map[string]any{
			"workers": "8",
			"disable": "cues",
			"coverage": map[string]any{
				"batch-timeout": "30s",
				"backoff":       "1s",
			},
		},
		"ai": map[string]any{
			"enabled":  true,
			"provider": "gemini",
			"gemini": map[string]any{
				"model":       "gemini-2.5-pro",
				"max-retries": 2,
				"adjudicate":  "true",
			},
		},
		"qdrant":       map[string]any{"url": "http://qdrant:6333", "collection": "segments"},
		"hh":           map[string]any{"token-file": "/run/secrets/hh"},
		"metrics-file": "/tmp/hh.prom",
	}

	config, err := decodeConfig(settings)
	require.NoError(t, err)

	assert.Equal(t, 8, config.Screening.Workers)
	assert.Equal(t, []string{"cues"}, config.Screening.Disable)
	assert.Equal(t, 30*time.Second, config.Screening.Coverage.BatchTimeout)
	assert.Equal(t, time.Second, config.Screening.Coverage.Backoff)
	require.NotNil(t, config.AI)
	require.NotNil(t, config.AI.Gemini)
	assert.Equal(t, "gemini-2.5-pro", config.AI.Gemini.Model)
	assert.Equal(t, 2, config.AI.Gemini.MaxRetries)
	assert.True(t, config.AI.Gemini.Adjudicate)
	assert.Equal(t, "segments", config.Qdrant.Collection)
	assert.Equal(t, "/run/secrets/hh", config.HH.TokenFile)
	assert.Equal(t, "/tmp/hh.prom", config.MetricsFile)
}

func TestDecodeConfigValidation(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		field    string
	}{
		{
			name:     "unknown provider",
			settings: map[string]any{"ai": map[string]any{"provider": "openai"}},
			field:    "Provider",
		},
		{
			name:     "enabled without gemini section",
			settings: map[string]any{"ai": map[string]any{"enabled": true}},
			field:    "Gemini",
		},
		{
			name:     "too many workers",
			settings: map[string]any{"screening": map[string]any{"workers": 100}},
			field:    "Workers",
		},
		{
			name:     "unknown stage",
			settings: map[string]any{"screening": map[string]any{"disable": []string{"coverage"}}},
			field:    "Disable",
		},
		{
			name: "overlap above chunk size",
			settings: map[string]any{"screening": map[string]any{
				"chunk-chars":   100,
				"chunk-overlap": 200,
			}},
			field: "ChunkOverlap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeConfig(tt.settings)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validating config")
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestDefaultsAndEnvironment(t *testing.T) {
	t.Setenv("HH_SCREENER_SCREENING_WORKERS", "6")
	t.Setenv("HH_SCREENER_SCREENING_DISABLE", "cues,competencies")
	t.Setenv("HH_SCREENER_AI_GEMINI_MODEL", "gemini-2.5-flash-lite")

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	config, err := decodeConfig(v.AllSettings())
	require.NoError(t, err)

	assert.Equal(t, 6, config.Screening.Workers)
	assert.Equal(t, []string{"cues", "competencies"}, config.Screening.Disable)
	assert.Equal(t, 2*time.Second, config.Screening.Coverage.Backoff)
	assert.False(t, config.AI.Enabled)
	assert.Equal(t, "gemini-2.5-flash-lite", config.AI.Gemini.Model)
	assert.True(t, config.AI.Gemini.Adjudicate)
	assert.False(t, config.AI.Gemini.Embed)
	assert.Empty(t, config.Qdrant.URL)
}

func TestBuildDepsDeterministic(t *testing.T) {
	config, err := decodeConfig(map[string]any{})
	require.NoError(t, err)

	deps, closeDeps, err := buildDeps(context.Background(), config, zap.NewNop(), nil)
	require.NoError(t, err)
	defer closeDeps()

	assert.NotNil(t, deps.Competency)
	assert.Nil(t, deps.Planner)
	assert.Nil(t, deps.Coverage)
	assert.Nil(t, deps.NewIndex)
}

func TestBuildDepsRequiresGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	config, err := decodeConfig(map[string]any{
		"ai": map[string]any{"enabled": true, "gemini": map[string]any{"model": "gemini-2.5-flash"}},
	})
	require.NoError(t, err)

	_, _, err = buildDeps(context.Background(), config, zap.NewNop(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gemini api key is not configured")
}

func TestLoadJobFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backend.txt")
	require.NoError(t, os.WriteFile(path, []byte("Senior Go developer"), 0o600))

	job, err := loadJob(context.Background(), &Config{}, path, "", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "backend.txt", job.Name)
	assert.Equal(t, "Senior Go developer", job.Description)

	_, err = loadJob(context.Background(), &Config{}, "", " ", zap.NewNop())
	require.Error(t, err)
}

func TestLoadResumes(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "alice.txt")
	require.NoError(t, os.WriteFile(a, []byte("Go, Kubernetes"), 0o600))

	docs, err := loadResumes([]string{a})
	require.NoError(t, err)
	assert.Equal(t, []screening.Document{{Name: "alice.txt", Text: "Go, Kubernetes"}}, docs)

	_, err = loadResumes([]string{a, filepath.Join(dir, "missing.txt")})
	require.Error(t, err)
}

func TestResolveToken(t *testing.T) {
	_, err := resolveToken(&Config{})
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("secret\n"), 0o600))

	token, err := resolveToken(&Config{HH: &HHConfig{TokenFile: path}})
	require.NoError(t, err)
	assert.Equal(t, "secret", token)
}

func TestHandleAction(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	evals := []*screening.Evaluation{
		screening.New(screening.Config{}, screening.Deps{}).Evaluate(context.Background(),
			screening.Job{Name: "jd", Description: "too short"},
			screening.Document{Name: "cv.txt", Text: "too short"},
		),
	}

	require.NoError(t, handleAction(PromptReportByTier, logger, evals))
	require.NoError(t, handleAction(PromptDumpToFile, logger, evals))
	require.ErrorIs(t, handleAction(PromptExit, logger, evals), errExit)
	require.Error(t, handleAction("unknown", logger, evals))

	dumps := logs.FilterMessage("dumping result to file").All()
	require.Len(t, dumps, 1)
	filename := dumps[0].ContextMap()["filename"].(string)
	t.Cleanup(func() { os.Remove(filename) })

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"resume": "cv.txt"`)
	assert.Contains(t, string(data), `"tier": "weak"`)
}

func TestDescribeAtoms(t *testing.T) {
	jd := "Requirements: Python, Django, PostgreSQL.\nNice to have: Kubernetes."

	report := describeAtoms(jd, 0)
	assert.NotEmpty(t, report.Must)
	for _, atom := range append(report.Must, report.Nice...) {
		if m, ok := report.Competencies[atom]; ok {
			assert.NotEmpty(t, m.Competency)
		}
	}
}
