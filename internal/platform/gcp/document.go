package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"

	"github.com/strokecovery/strokecovery-backend/internal/platform/ctxutil"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

// Document turns a PDF into plain text with page breaks preserved.
type Document interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (*DocumentText, error)
	Close() error
}

type DocumentConfig struct {
	ProjectID        string
	Location         string
	ProcessorID      string
	ProcessorVersion string
	Timeout          time.Duration
}

type DocumentText struct {
	Processor string
	// Text is every page joined with a blank line, tables appended as markdown.
	Text   string
	Pages  []string
	Tables []string
}

type documentService struct {
	log       *logger.Logger
	cfg       DocumentConfig
	processor string
	client    *documentai.DocumentProcessorClient
}

func NewDocument(log *logger.Logger, cfg DocumentConfig) (Document, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Location == "" {
		cfg.Location = "us"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Minute
	}
	name := processorName(cfg.ProjectID, cfg.Location, cfg.ProcessorID, cfg.ProcessorVersion)
	if name == "" {
		return nil, fmt.Errorf("documentai: project and processor id are required")
	}
	slog := log.With("service", "gcp.Document")

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", cfg.Location)
	opts := append([]option.ClientOption{option.WithEndpoint(endpoint)}, ClientOptionsFromEnv()...)
	c, err := documentai.NewDocumentProcessorClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("documentai client: %w", err)
	}
	slog.Info("Document AI initialized", "endpoint", endpoint, "processor", name)

	return &documentService{log: slog, cfg: cfg, processor: name, client: c}, nil
}

func (s *documentService) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *documentService) ExtractText(ctx context.Context, data []byte, mimeType string) (*DocumentText, error) {
	ctx = ctxutil.Default(ctx)
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	if mimeType == "" {
		mimeType = "application/pdf"
	}
	if len(data) == 0 {
		return &DocumentText{Processor: s.processor}, nil
	}

	resp, err := s.client.ProcessDocument(ctx, &documentaipb.ProcessRequest{
		Name: s.processor,
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{Content: data, MimeType: mimeType},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("documentai ProcessDocument: %w", err)
	}
	out := documentText(resp.GetDocument())
	out.Processor = s.processor
	s.log.Debug("Document processed", "pages", len(out.Pages), "tables", len(out.Tables), "chars", len(out.Text))
	return out, nil
}

func documentText(doc *documentaipb.Document) *DocumentText {
	out := &DocumentText{}
	if doc == nil {
		return out
	}

	for _, p := range doc.GetPages() {
		if p == nil {
			continue
		}
		var page strings.Builder
		for _, para := range p.GetParagraphs() {
			t := strings.TrimSpace(textFromAnchor(doc.GetText(), para.GetLayout().GetTextAnchor()))
			if t == "" {
				continue
			}
			page.WriteString(t)
			page.WriteString("\n")
		}
		if pt := strings.TrimSpace(page.String()); pt != "" {
			out.Pages = append(out.Pages, pt)
		}
		for _, table := range p.GetTables() {
			if md := strings.TrimSpace(tableToMarkdown(doc.GetText(), table)); md != "" {
				out.Tables = append(out.Tables, md)
			}
		}
	}

	// Some processors populate doc.Text without paragraph layout.
	if len(out.Pages) == 0 {
		if full := strings.TrimSpace(doc.GetText()); full != "" {
			out.Pages = []string{full}
		}
	}

	parts := append([]string{}, out.Pages...)
	parts = append(parts, out.Tables...)
	out.Text = strings.Join(parts, "\n\n")
	return out
}

func textFromAnchor(full string, anchor *documentaipb.Document_TextAnchor) string {
	if anchor == nil || len(anchor.TextSegments) == 0 || full == "" {
		return ""
	}
	var b strings.Builder
	for _, seg := range anchor.TextSegments {
		if seg == nil {
			continue
		}
		start, end := int(seg.StartIndex), int(seg.EndIndex)
		if start < 0 {
			start = 0
		}
		if end > len(full) {
			end = len(full)
		}
		if start >= end {
			continue
		}
		b.WriteString(full[start:end])
	}
	return b.String()
}

func tableToMarkdown(full string, t *documentaipb.Document_Page_Table) string {
	if t == nil {
		return ""
	}
	var header []string
	if len(t.HeaderRows) > 0 {
		header = tableRowToCells(full, t.HeaderRows[0])
	}
	body := t.BodyRows
	if len(header) == 0 && len(body) > 0 {
		header = tableRowToCells(full, body[0])
		body = body[1:]
	}
	if len(header) == 0 {
		return ""
	}

	rows := [][]string{header}
	cols := len(header)
	for _, r := range body {
		if r == nil {
			continue
		}
		cells := tableRowToCells(full, r)
		if len(cells) > cols {
			cols = len(cells)
		}
		rows = append(rows, cells)
	}

	var out strings.Builder
	for i, r := range rows {
		for len(r) < cols {
			r = append(r, "")
		}
		out.WriteString("| " + strings.Join(escapePipes(r), " | ") + " |\n")
		if i == 0 {
			out.WriteString("|" + strings.Repeat(" --- |", cols) + "\n")
		}
	}
	return out.String()
}

func tableRowToCells(full string, r *documentaipb.Document_Page_Table_TableRow) []string {
	out := make([]string, 0, len(r.GetCells()))
	for _, c := range r.GetCells() {
		out = append(out, collapseWhitespace(textFromAnchor(full, c.GetLayout().GetTextAnchor())))
	}
	return out
}

func escapePipes(row []string) []string {
	out := make([]string, len(row))
	for i, s := range row {
		out[i] = strings.ReplaceAll(s, "|", "\\|")
	}
	return out
}

func processorName(project, location, processorID, version string) string {
	project = strings.TrimSpace(project)
	location = strings.TrimSpace(location)
	processorID = strings.TrimSpace(processorID)
	version = strings.TrimSpace(version)

	if project == "" || location == "" || processorID == "" {
		return ""
	}
	base := fmt.Sprintf("projects/%s/locations/%s/processors/%s", project, location, processorID)
	if version != "" {
		return base + "/processorVersions/" + version
	}
	return base
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\u00a0", " ")), " ")
}
