package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/strokecovery/strokecovery-backend/internal/app"
	"github.com/strokecovery/strokecovery-backend/internal/data/db"
	"github.com/strokecovery/strokecovery-backend/internal/ingestion/papers"
	"github.com/strokecovery/strokecovery-backend/internal/platform/gcp"
	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
)

func newRootCommand() *cobra.Command {
	r := &refinery{v: viper.New()}
	root := &cobra.Command{
		Use:           "paperrefinery",
		Short:         "Turn stroke research PDFs into searchable insights",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	bindFlags(r.v, root)

	root.AddCommand(
		setupCommand(r),
		testCommand(r),
		parseCommand(r),
		extractCommand(r),
		ingestCommand(r),
		searchCommand(r),
		statsCommand(r),
	)
	return root
}

func setupCommand(r *refinery) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the vector extension, research tables and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := r.open(cmd.Context(), needs{db: true}); err != nil {
				return err
			}
			defer r.close()
			if err := r.pg.MigrateResearch(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Research schema ready.")
			return nil
		},
	}
}

type check struct {
	name string
	err  error
	info string
}

func testCommand(r *refinery) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Check configuration and provider connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := r.loadConfig(); err != nil {
				return err
			}
			defer r.close()
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			var checks []check

			pg, err := db.NewPostgresService(r.log, r.cfg.Postgres)
			if err == nil {
				r.pg = pg
				err = pg.Ping(ctx)
			}
			checks = append(checks, check{name: "postgres", err: err})

			chat, embed, err := app.NewLLM(r.log, r.cfg.LLM, nil)
			checks = append(checks, check{name: "llm (" + r.cfg.LLM.Provider + ")", err: err})
			if err == nil {
				_, err = chat.GenerateText(ctx, "Reply with the single word ok.", "ping", llm.Options{MaxTokens: 5})
				checks = append(checks, check{name: "llm completion", err: err})
			}
			if embed == nil {
				checks = append(checks, check{name: "embeddings", err: fmt.Errorf("OPENAI_API_KEY not set")})
			} else {
				vecs, err := embed.Embed(ctx, []string{"stroke recovery"})
				c := check{name: "embeddings", err: err}
				if err == nil && len(vecs) == 1 {
					c.info = fmt.Sprintf("%d dimensions", len(vecs[0]))
				}
				checks = append(checks, c)
			}

			doc, err := gcp.NewDocument(r.log, gcp.DocumentConfig{
				ProjectID:   r.cfg.DocAI.ProjectID,
				Location:    r.cfg.DocAI.Location,
				ProcessorID: r.cfg.DocAI.ProcessorID,
			})
			if err == nil {
				r.doc = doc
			}
			checks = append(checks, check{name: "document ai", err: err})

			return printChecks(cmd.OutOrStdout(), checks)
		},
	}
}

func printChecks(w io.Writer, checks []check) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	failed := 0
	for _, c := range checks {
		status, detail := "ok", c.info
		if c.err != nil {
			failed++
			status, detail = "FAIL", c.err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.name, status, detail)
	}
	_ = tw.Flush()
	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(checks))
	}
	return nil
}

func parseCommand(r *refinery) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <pdf>",
		Short: "Show the title, hash and detected sections of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.open(cmd.Context(), needs{doc: true, objects: gcp.IsGCSURI(args[0])}); err != nil {
				return err
			}
			defer r.close()
			parsed, err := r.pipe.Parse(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title: %s\nHash:  %s\n\n", parsed.Title, parsed.Hash)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tSECTION\tCHARS\tPREVIEW")
			for _, s := range parsed.Sections {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", s.Position, s.Name, len([]rune(s.Content)), preview(s.Content, 60))
			}
			return tw.Flush()
		},
	}
}

func extractCommand(r *refinery) *cobra.Command {
	var outPath, format string
	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Extract insights from a PDF without storing them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (json or yaml)", format)
			}
			if err := r.open(cmd.Context(), needs{doc: true, llm: true, objects: gcp.IsGCSURI(args[0])}); err != nil {
				return err
			}
			defer r.close()

			res, err := r.pipe.Process(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			body, err := encode(res, format)
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(body)
				return err
			}
			if err := os.WriteFile(outPath, body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d insights to %s\n", res.InsightsCount, outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write results to this file")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or yaml")
	return cmd
}

func encode(v any, format string) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(v)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func ingestCommand(r *refinery) *cobra.Command {
	var store, noStore bool
	cmd := &cobra.Command{
		Use:   "ingest [path|gs://bucket/prefix]",
		Short: "Run the full pipeline over a PDF or a folder of PDFs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noStore {
				store = false
			}
			if err := r.loadConfig(); err != nil {
				return err
			}
			target := r.cfg.DocAI.PapersDir
			if len(args) == 1 {
				target = args[0]
			}
			if err := r.open(cmd.Context(), needs{db: store, doc: true, llm: true, objects: gcp.IsGCSURI(target)}); err != nil {
				return err
			}
			defer r.close()

			results, err := r.pipe.ProcessAll(cmd.Context(), target, store)
			printSummary(cmd.OutOrStdout(), results)
			return err
		},
	}
	cmd.Flags().BoolVar(&store, "store", true, "store papers and insights in postgres")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "extract only, do not write to postgres")
	return cmd
}

func printSummary(w io.Writer, results []*papers.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSTATUS\tSECTIONS\tINSIGHTS\tSECONDS")
	ok, insights := 0, 0
	for _, res := range results {
		status := "ok"
		switch {
		case res.Error != "":
			status = "error: " + preview(res.Error, 40)
		case res.Duplicate:
			status = "duplicate"
		default:
			ok++
			insights += res.InsightsCount
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.1f\n", preview(res.Source, 40), status, len(res.Sections), res.InsightsCount, res.DurationSeconds)
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\nTotal: %d/%d papers, %d insights\n", ok, len(results), insights)
}

func searchCommand(r *refinery) *cobra.Command {
	var limit int
	var strokeType, phase string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Semantic search over stored insights",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := r.open(cmd.Context(), needs{db: true, llm: true}); err != nil {
				return err
			}
			defer r.close()
			hits, err := r.pipe.Search(cmd.Context(), strings.Join(args, " "), papers.SearchFilter{
				StrokeType:    strokeType,
				RecoveryPhase: phase,
			}, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(hits) == 0 {
				fmt.Fprintln(out, "No matching insights.")
				return nil
			}
			for i, h := range hits {
				fmt.Fprintf(out, "%d. [%.3f] %s\n", i+1, h.Similarity, h.Claim)
				if h.Intervention != nil {
					fmt.Fprintf(out, "   intervention: %s\n", *h.Intervention)
				}
				if h.RecoveryPhase != nil {
					fmt.Fprintf(out, "   phase: %s\n", *h.RecoveryPhase)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "number of results")
	cmd.Flags().StringVarP(&strokeType, "type", "t", "", "stroke type filter (ischemic, hemorrhagic, tbi)")
	cmd.Flags().StringVarP(&phase, "phase", "p", "", "recovery phase filter (acute, subacute, chronic)")
	return cmd
}

func statsCommand(r *refinery) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show paper and insight counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := r.open(cmd.Context(), needs{db: true}); err != nil {
				return err
			}
			defer r.close()
			stats, err := r.pipe.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Papers:   %d\nInsights: %d\n", stats.Papers, stats.Insights)
			return nil
		},
	}
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
