package gcp

import (
	"strings"
	"testing"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
)

func anchor(start, end int64) *documentaipb.Document_Page_Layout {
	return &documentaipb.Document_Page_Layout{
		TextAnchor: &documentaipb.Document_TextAnchor{
			TextSegments: []*documentaipb.Document_TextAnchor_TextSegment{{StartIndex: start, EndIndex: end}},
		},
	}
}

func TestDocumentTextJoinsPagesAndTables(t *testing.T) {
	full := "Abstract\nStroke rehab works.\nA|B\n1\n"
	doc := &documentaipb.Document{
		Text: full,
		Pages: []*documentaipb.Document_Page{
			{
				PageNumber: 1,
				Paragraphs: []*documentaipb.Document_Page_Paragraph{
					{Layout: anchor(0, 9)},
					{Layout: anchor(9, 28)},
				},
				Tables: []*documentaipb.Document_Page_Table{{
					HeaderRows: []*documentaipb.Document_Page_Table_TableRow{{
						Cells: []*documentaipb.Document_Page_Table_TableCell{{Layout: anchor(29, 32)}},
					}},
					BodyRows: []*documentaipb.Document_Page_Table_TableRow{{
						Cells: []*documentaipb.Document_Page_Table_TableCell{{Layout: anchor(33, 34)}},
					}},
				}},
			},
		},
	}

	out := documentText(doc)
	if len(out.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(out.Pages))
	}
	if out.Pages[0] != "Abstract\nStroke rehab works." {
		t.Fatalf("unexpected page text %q", out.Pages[0])
	}
	if len(out.Tables) != 1 || !strings.Contains(out.Tables[0], `| A\|B |`) {
		t.Fatalf("expected escaped markdown table, got %#v", out.Tables)
	}
	if !strings.HasPrefix(out.Text, "Abstract") || !strings.Contains(out.Text, "| 1 |") {
		t.Fatalf("unexpected joined text %q", out.Text)
	}
}

func TestDocumentTextFallsBackToFullText(t *testing.T) {
	out := documentText(&documentaipb.Document{Text: "  plain body  "})
	if out.Text != "plain body" {
		t.Fatalf("expected fallback text, got %q", out.Text)
	}
	if documentText(nil).Text != "" {
		t.Fatalf("nil document should produce empty text")
	}
}

func TestProcessorName(t *testing.T) {
	if got := processorName("p", "us", "abc", ""); got != "projects/p/locations/us/processors/abc" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := processorName("p", "eu", "abc", "v2"); !strings.HasSuffix(got, "/processorVersions/v2") {
		t.Fatalf("missing version: %q", got)
	}
	if processorName("", "us", "abc", "") != "" {
		t.Fatalf("expected empty name without project")
	}
}

func TestParseGCSURI(t *testing.T) {
	b, k, err := ParseGCSURI("gs://papers/stroke/2024/")
	if err != nil || b != "papers" || k != "stroke/2024/" {
		t.Fatalf("got %q %q %v", b, k, err)
	}
	if _, _, err := ParseGCSURI("/local/path"); err == nil {
		t.Fatalf("expected error for non-gcs path")
	}
	if _, _, err := ParseGCSURI("gs:///key"); err == nil {
		t.Fatalf("expected error for missing bucket")
	}
	if !IsGCSURI(" gs://x") || IsGCSURI("./x") {
		t.Fatalf("IsGCSURI mismatch")
	}
}

func TestCollapseWhitespace(t *testing.T) {
	got := collapseWhitespace("  Motor recovery \n\t after   stroke ")
	if got != "Motor recovery after stroke" {
		t.Fatalf("collapseWhitespace = %q", got)
	}
}
