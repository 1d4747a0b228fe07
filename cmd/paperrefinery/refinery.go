package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/strokecovery/strokecovery-backend/internal/app"
	"github.com/strokecovery/strokecovery-backend/internal/data/db"
	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	"github.com/strokecovery/strokecovery-backend/internal/ingestion/papers"
	"github.com/strokecovery/strokecovery-backend/internal/observability"
	"github.com/strokecovery/strokecovery-backend/internal/platform/gcp"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

// Flags and config-file keys that override the environment before app.LoadConfig runs.
var boundKeys = map[string]string{
	"database-url":       "DATABASE_URL",
	"llm-provider":       "LLM_PROVIDER",
	"docai-project-id":   "DOCAI_PROJECT_ID",
	"docai-location":     "DOCAI_LOCATION",
	"docai-processor-id": "DOCAI_PROCESSOR_ID",
	"papers-dir":         "PAPERS_DIR",
	"log-mode":           "LOG_MODE",
}

type needs struct {
	db      bool
	doc     bool
	llm     bool
	objects bool
}

type refinery struct {
	v   *viper.Viper
	log *logger.Logger
	cfg app.Config

	pg      *db.PostgresService
	doc     gcp.Document
	objects gcp.Objects
	metrics *observability.Metrics
	pipe    *papers.Pipeline
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "optional config file (yaml, json or toml)")
	f.String("env-file", "", "dotenv file to load (default .env)")
	f.String("database-url", "", "postgres connection url")
	f.String("llm-provider", "", "chat provider: openai or anthropic")
	f.String("docai-project-id", "", "Document AI project")
	f.String("docai-location", "", "Document AI location")
	f.String("docai-processor-id", "", "Document AI processor")
	f.String("papers-dir", "", "default folder for ingest")
	f.String("log-mode", "", "development or production")
	for flag := range boundKeys {
		_ = v.BindPFlag(flag, f.Lookup(flag))
	}
	_ = v.BindPFlag("config", f.Lookup("config"))
	_ = v.BindPFlag("env-file", f.Lookup("env-file"))
}

// loadConfig layers flags over the config file over the environment, then
// hands the result to app.LoadConfig so the CLI and API read the same keys.
func (r *refinery) loadConfig() error {
	if path := r.v.GetString("env-file"); path != "" {
		_ = os.Setenv("ENV_FILE", path)
	}
	if path := r.v.GetString("config"); path != "" {
		r.v.SetConfigFile(path)
		if err := r.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	r.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	r.v.AutomaticEnv()
	for flag, env := range boundKeys {
		if val := strings.TrimSpace(r.v.GetString(flag)); val != "" {
			_ = os.Setenv(env, val)
		}
	}

	log, err := app.NewLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	r.log = log
	r.cfg = app.LoadConfig(log)
	return nil
}

func (r *refinery) open(ctx context.Context, n needs) error {
	if r.log == nil {
		if err := r.loadConfig(); err != nil {
			return err
		}
	}
	r.metrics = observability.NewMetrics()

	deps := papers.PipelineDeps{Log: r.log, Observer: r.metrics}

	if n.db {
		pg, err := db.NewPostgresService(r.log, r.cfg.Postgres)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		r.pg = pg
		deps.DB = pg.DB()
		deps.Papers = repos.NewPaperRepo(pg.DB(), r.log)
		deps.Sections = repos.NewPaperSectionRepo(pg.DB(), r.log)
		deps.Insights = repos.NewInsightRepo(pg.DB(), r.log)
	}
	if n.doc {
		doc, err := gcp.NewDocument(r.log, gcp.DocumentConfig{
			ProjectID:   r.cfg.DocAI.ProjectID,
			Location:    r.cfg.DocAI.Location,
			ProcessorID: r.cfg.DocAI.ProcessorID,
			Timeout:     r.cfg.DocAI.Timeout,
		})
		if err != nil {
			return fmt.Errorf("document ai: %w", err)
		}
		r.doc = doc
		deps.Document = doc
	}
	if n.objects {
		objects, err := gcp.NewObjects(ctx, r.log)
		if err != nil {
			return fmt.Errorf("cloud storage: %w", err)
		}
		r.objects = objects
		deps.Objects = objects
	}
	if n.llm {
		chat, embed, err := app.NewLLM(r.log, r.cfg.LLM, r.metrics)
		if err != nil {
			return err
		}
		deps.Extractor = papers.NewExtractor(r.log, chat, 0)
		deps.Embedder = embed
	}
	r.pipe = papers.NewPipeline(deps)
	return nil
}

func (r *refinery) close() {
	if r.doc != nil {
		_ = r.doc.Close()
	}
	if r.objects != nil {
		_ = r.objects.Close()
	}
	if r.pg != nil {
		_ = r.pg.Close()
	}
	if r.log != nil {
		r.log.Sync()
	}
}
