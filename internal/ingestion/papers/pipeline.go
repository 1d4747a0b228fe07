package papers

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/platform/gcp"
	"github.com/strokecovery/strokecovery-backend/internal/platform/llm"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

const (
	pdfMime            = "application/pdf"
	sectionConcurrency = 3
)

// TextExtractor is the slice of gcp.Document the pipeline uses.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (*gcp.DocumentText, error)
}

// ObjectStore is the slice of gcp.Objects used for gs:// sources.
type ObjectStore interface {
	List(ctx context.Context, uri string, suffix string) ([]string, error)
	Read(ctx context.Context, uri string) ([]byte, error)
}

type Observer interface {
	IncPaper(status string)
	AddInsights(n int)
}

type PipelineDeps struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Papers    repos.PaperRepo
	Sections  repos.PaperSectionRepo
	Insights  repos.InsightRepo
	Document  TextExtractor
	Objects   ObjectStore
	Extractor Extractor
	Embedder  llm.Embedder
	Observer  Observer
}

type SectionResult struct {
	Name     string             `json:"name" yaml:"name"`
	Chars    int                `json:"chars" yaml:"chars"`
	Skipped  bool               `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Insights []ExtractedInsight `json:"insights" yaml:"insights"`
}

type Result struct {
	Source          string          `json:"source" yaml:"source"`
	Title           string          `json:"title" yaml:"title"`
	Hash            string          `json:"hash" yaml:"hash"`
	PaperID         *uuid.UUID      `json:"paper_id,omitempty" yaml:"paper_id,omitempty"`
	Sections        []SectionResult `json:"sections" yaml:"sections"`
	InsightsCount   int             `json:"insights_count" yaml:"insights_count"`
	Duplicate       bool            `json:"duplicate,omitempty" yaml:"duplicate,omitempty"`
	Stored          bool            `json:"stored" yaml:"stored"`
	Error           string          `json:"error,omitempty" yaml:"error,omitempty"`
	DurationSeconds float64         `json:"duration_seconds" yaml:"duration_seconds"`
}

type Pipeline struct {
	deps PipelineDeps
	log  *logger.Logger
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{deps: deps, log: deps.Log.With("component", "PaperPipeline")}
}

// Sources expands target into PDF references: a gs:// prefix, a directory
// (non-recursive) or a single file.
func (p *Pipeline) Sources(ctx context.Context, target string) ([]string, error) {
	target = strings.TrimSpace(target)
	if gcp.IsGCSURI(target) {
		if p.deps.Objects == nil {
			return nil, fmt.Errorf("gcs source %q but no object store configured", target)
		}
		if strings.HasSuffix(strings.ToLower(target), ".pdf") {
			return []string{target}, nil
		}
		return p.deps.Objects.List(ctx, target, ".pdf")
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", target, err)
	}
	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(target), ".pdf") {
			return nil, fmt.Errorf("not a pdf file: %s", target)
		}
		return []string{target}, nil
	}
	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", target, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		out = append(out, filepath.Join(target, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func (p *Pipeline) read(ctx context.Context, source string) ([]byte, error) {
	if gcp.IsGCSURI(source) {
		if p.deps.Objects == nil {
			return nil, fmt.Errorf("no object store configured for %s", source)
		}
		return p.deps.Objects.Read(ctx, source)
	}
	return os.ReadFile(source)
}

// Parse reads a PDF and splits its text into sections.
func (p *Pipeline) Parse(ctx context.Context, source string) (*ParsedPaper, error) {
	if p.deps.Document == nil {
		return nil, fmt.Errorf("document extraction not configured")
	}
	data, err := p.read(ctx, source)
	if err != nil {
		return nil, err
	}
	doc, err := p.deps.Document.ExtractText(ctx, data, pdfMime)
	if err != nil {
		return nil, fmt.Errorf("extract text from %s: %w", source, err)
	}
	base := path.Base(filepath.ToSlash(source))
	return Parse(source, data, doc.Text, strings.TrimSuffix(base, path.Ext(base))), nil
}

// Extract runs the extractor over every section. Order follows the paper.
func (p *Pipeline) Extract(ctx context.Context, parsed *ParsedPaper) []SectionResult {
	out := make([]SectionResult, len(parsed.Sections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sectionConcurrency)
	for i, s := range parsed.Sections {
		out[i] = SectionResult{Name: s.Name, Chars: len([]rune(s.Content)), Insights: []ExtractedInsight{}}
		if !ShouldExtract(s) {
			out[i].Skipped = true
			continue
		}
		g.Go(func() error {
			out[i].Insights = p.deps.Extractor.ExtractSection(gctx, s)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Process parses one PDF, extracts its insights and, when store is set,
// embeds and persists them. A paper whose hash is already stored is skipped.
func (p *Pipeline) Process(ctx context.Context, source string, store bool) (*Result, error) {
	start := time.Now()
	res := &Result{Source: source, Sections: []SectionResult{}}
	defer func() { res.DurationSeconds = time.Since(start).Seconds() }()

	parsed, err := p.Parse(ctx, source)
	if err != nil {
		p.observePaper("failed")
		return res, err
	}
	res.Title = parsed.Title
	res.Hash = parsed.Hash

	if store {
		existing, err := p.deps.Papers.GetByHash(ctx, nil, parsed.Hash)
		if err != nil {
			p.observePaper("failed")
			return res, fmt.Errorf("check paper hash: %w", err)
		}
		if existing != nil {
			p.log.Info("Paper already stored, skipping", "source", source, "paper_id", existing.ID)
			res.Duplicate = true
			res.PaperID = &existing.ID
			p.observePaper("duplicate")
			return res, nil
		}
	}

	res.Sections = p.Extract(ctx, parsed)
	for _, s := range res.Sections {
		res.InsightsCount += len(s.Insights)
	}
	p.log.Info("Extracted insights", "source", source, "sections", len(res.Sections), "insights", res.InsightsCount)

	if !store {
		p.observePaper("extracted")
		return res, nil
	}
	if res.InsightsCount == 0 {
		p.observePaper("empty")
		return res, nil
	}

	paperID, err := p.store(ctx, parsed, res.Sections)
	if err != nil {
		p.observePaper("failed")
		return res, err
	}
	res.PaperID = &paperID
	res.Stored = true
	p.observePaper("stored")
	if p.deps.Observer != nil {
		p.deps.Observer.AddInsights(res.InsightsCount)
	}
	return res, nil
}

// ProcessAll runs Process over every source under target. A failing paper is
// recorded in its Result and does not stop the batch.
func (p *Pipeline) ProcessAll(ctx context.Context, target string, store bool) ([]*Result, error) {
	sources, err := p.Sources(ctx, target)
	if err != nil {
		return nil, err
	}
	out := make([]*Result, 0, len(sources))
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := p.Process(ctx, src, store)
		if err != nil {
			p.log.Warn("Paper failed", "source", src, "error", err)
			res.Error = err.Error()
		}
		out = append(out, res)
	}
	return out, nil
}

func (p *Pipeline) store(ctx context.Context, parsed *ParsedPaper, sections []SectionResult) (uuid.UUID, error) {
	var flat []ExtractedInsight
	var sectionNames []string
	for _, s := range sections {
		for _, in := range s.Insights {
			flat = append(flat, in)
			sectionNames = append(sectionNames, s.Name)
		}
	}
	texts := make([]string, len(flat))
	for i, in := range flat {
		texts[i] = EmbedText(in)
	}
	vectors, err := EmbedAll(ctx, p.deps.Embedder, texts)
	if err != nil {
		return uuid.Nil, err
	}

	paper := &types.Paper{
		ID:          uuid.New(),
		Hash:        parsed.Hash,
		Title:       parsed.Title,
		Authors:     pq.StringArray{},
		SourceURI:   parsed.Source,
		ProcessedAt: time.Now().UTC(),
	}
	sectionRows := make([]*types.PaperSection, 0, len(parsed.Sections))
	sectionIDs := map[string]uuid.UUID{}
	for _, s := range parsed.Sections {
		row := &types.PaperSection{
			ID:          uuid.New(),
			PaperID:     paper.ID,
			SectionName: s.Name,
			Content:     s.Content,
			Position:    s.Position,
		}
		if _, ok := sectionIDs[s.Name]; !ok {
			sectionIDs[s.Name] = row.ID
		}
		sectionRows = append(sectionRows, row)
	}
	insightRows := make([]*types.Insight, len(flat))
	for i, in := range flat {
		vec := pgvector.NewVector(vectors[i])
		row := &types.Insight{
			ID:                 uuid.New(),
			PaperID:            paper.ID,
			Claim:              in.Claim,
			Evidence:           in.Evidence,
			QuantitativeResult: in.QuantitativeResult,
			StrokeTypes:        pq.StringArray(in.StrokeTypes),
			RecoveryPhase:      in.RecoveryPhase,
			Intervention:       in.Intervention,
			SampleSize:         in.SampleSize,
			Embedding:          &vec,
		}
		if id, ok := sectionIDs[sectionNames[i]]; ok {
			row.SectionID = &id
		}
		insightRows[i] = row
	}

	write := func(tx *gorm.DB) error {
		if _, err := p.deps.Papers.Create(ctx, tx, paper); err != nil {
			return fmt.Errorf("insert paper: %w", err)
		}
		if err := p.deps.Sections.CreateBatch(ctx, tx, sectionRows); err != nil {
			return fmt.Errorf("insert sections: %w", err)
		}
		if err := p.deps.Insights.CreateBatch(ctx, tx, insightRows); err != nil {
			return fmt.Errorf("insert insights: %w", err)
		}
		return nil
	}
	if p.deps.DB == nil {
		err = write(nil)
	} else {
		err = p.deps.DB.WithContext(ctx).Transaction(write)
	}
	if err != nil {
		return uuid.Nil, err
	}
	p.log.Info("Stored paper", "paper_id", paper.ID, "sections", len(sectionRows), "insights", len(insightRows))
	return paper.ID, nil
}

type SearchFilter struct {
	StrokeType    string
	RecoveryPhase string
}

// Search embeds the query and returns the n closest insights.
func (p *Pipeline) Search(ctx context.Context, query string, f SearchFilter, n int) ([]*types.ScoredInsight, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	if p.deps.Embedder == nil {
		return nil, fmt.Errorf("no embedding provider configured")
	}
	vecs, err := p.deps.Embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vecs))
	}
	filter := repos.InsightFilter{RecoveryPhase: strings.ToLower(strings.TrimSpace(f.RecoveryPhase))}
	if t := strings.ToLower(strings.TrimSpace(f.StrokeType)); t != "" {
		filter.StrokeTypes = []string{t}
	}
	return p.deps.Insights.SearchSimilar(ctx, nil, vecs[0], filter, n)
}

type Stats struct {
	Papers   int64 `json:"papers" yaml:"papers"`
	Insights int64 `json:"insights" yaml:"insights"`
}

func (p *Pipeline) Stats(ctx context.Context) (Stats, error) {
	papers, err := p.deps.Papers.Count(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("count papers: %w", err)
	}
	insights, err := p.deps.Insights.Count(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("count insights: %w", err)
	}
	return Stats{Papers: papers, Insights: insights}, nil
}

func (p *Pipeline) observePaper(status string) {
	if p.deps.Observer != nil {
		p.deps.Observer.IncPaper(status)
	}
}
