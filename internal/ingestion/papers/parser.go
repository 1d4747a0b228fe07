package papers

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"
)

// FullTextSection names the single section used when no headers are found.
const FullTextSection = "full_text"

type ParsedSection struct {
	Name     string `json:"name" yaml:"name"`
	Content  string `json:"content" yaml:"content"`
	Position int    `json:"position" yaml:"position"`
}

type ParsedPaper struct {
	Source   string          `json:"source" yaml:"source"`
	Hash     string          `json:"hash" yaml:"hash"`
	Title    string          `json:"title" yaml:"title"`
	Sections []ParsedSection `json:"sections" yaml:"sections"`
	FullText string          `json:"-" yaml:"-"`
}

var standardSections = []string{
	"abstract",
	"introduction",
	"background",
	"methods",
	"methodology",
	"materials and methods",
	"results",
	"findings",
	"discussion",
	"conclusion",
	"conclusions",
	"references",
	"acknowledgments",
}

var sectionAliases = map[string]string{
	"material and methods":  "methods",
	"materials and methods": "methods",
	"methodology":           "methods",
	"experimental":          "methods",
	"experimental design":   "methods",
	"study design":          "methods",
	"findings":              "results",
	"outcomes":              "results",
	"conclusions":           "conclusion",
	"summary":               "conclusion",
	"concluding remarks":    "conclusion",
	"literature review":     "background",
	"related work":          "background",
	"prior work":            "background",
}

var (
	headerPatterns = []*regexp.Regexp{
		// INTRODUCTION
		regexp.MustCompile(`^([A-Z][A-Z\s]{3,30})$`),
		// 1. Introduction, 2.1 Methods
		regexp.MustCompile(`^(\d+\.?\d*\.?\s*[A-Za-z][A-Za-z\s]{3,30})$`),
		// Methods, Results:
		regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Za-z]+)*):?\s*$`),
	}
	leadingNumber = regexp.MustCompile(`^[\d.]+\s*`)
)

// HashBytes is the hex SHA-256 used to deduplicate papers.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Parse builds a ParsedPaper from extracted text. fallbackTitle is used when
// no plausible title line is found.
func Parse(source string, data []byte, text string, fallbackTitle string) *ParsedPaper {
	title := GuessTitle(text)
	if title == "" {
		title = fallbackTitle
	}
	return &ParsedPaper{
		Source:   source,
		Hash:     HashBytes(data),
		Title:    title,
		Sections: SplitSections(text),
		FullText: text,
	}
}

// GuessTitle returns the first of the leading 20 lines that is longer than 20
// and shorter than 200 characters, not all caps and not a URL.
func GuessTitle(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 20 {
		lines = lines[:20]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		n := len([]rune(line))
		if n <= 20 || n >= 200 {
			continue
		}
		if isAllCaps(line) || strings.HasPrefix(line, "http") {
			continue
		}
		return line
	}
	return ""
}

func isAllCaps(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// NormalizeSectionName lowercases, drops any leading numbering and maps
// known variants onto a standard name.
func NormalizeSectionName(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.TrimSpace(leadingNumber.ReplaceAllString(h, ""))
	h = strings.Join(strings.Fields(h), " ")
	if alias, ok := sectionAliases[h]; ok {
		return alias
	}
	return h
}

func isKnownSection(name string) bool {
	for _, std := range standardSections {
		if name == std || strings.Contains(name, std) {
			return true
		}
	}
	return false
}

type header struct {
	name   string
	offset int
}

func detectHeaders(text string) []header {
	var out []header
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, re := range headerPatterns {
			m := re.FindStringSubmatch(trimmed)
			if m == nil {
				continue
			}
			name := NormalizeSectionName(strings.TrimSuffix(strings.TrimSpace(m[1]), ":"))
			if isKnownSection(name) {
				out = append(out, header{name: name, offset: offset})
				break
			}
		}
		offset += len(line) + 1
	}
	return out
}

// SplitSections cuts text at detected headers. The header line itself is
// dropped and empty sections are skipped. Without any header the whole text
// becomes one full_text section.
func SplitSections(text string) []ParsedSection {
	headers := detectHeaders(text)
	if len(headers) == 0 {
		return []ParsedSection{{Name: FullTextSection, Content: strings.TrimSpace(text), Position: 0}}
	}

	out := make([]ParsedSection, 0, len(headers))
	for i, h := range headers {
		end := len(text)
		if i+1 < len(headers) {
			end = headers[i+1].offset
		}
		chunk := strings.TrimSpace(text[h.offset:end])
		if _, rest, ok := strings.Cut(chunk, "\n"); ok {
			chunk = strings.TrimSpace(rest)
		} else {
			chunk = ""
		}
		if chunk == "" {
			continue
		}
		out = append(out, ParsedSection{Name: h.name, Content: chunk, Position: i})
	}
	return out
}
