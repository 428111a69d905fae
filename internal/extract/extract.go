// Package extract pulls plain text out of the supported document types.
// Each type has a dedicated strategy; unsupported or corrupt files report an
// error and never abort a batch.
package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// ErrUnsupported marks a file type with no extraction strategy.
var ErrUnsupported = errors.New("unsupported file type")

// SupportedExts lists the extensions Text can handle.
var SupportedExts = map[string]bool{
	".pdf": true, ".docx": true, ".pptx": true,
	".txt": true, ".md": true, ".markdown": true,
	".html": true, ".htm": true,
	".xlsx": true, ".ods": true,
}

// Supported reports whether path's extension has an extraction strategy.
func Supported(path string) bool {
	return SupportedExts[strings.ToLower(filepath.Ext(path))]
}

// Text extracts the plain text of the document at path.
func Text(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".pdf":
		return pdfText(path)
	case ".docx":
		return docxText(path)
	case ".pptx":
		return pptxText(path)
	case ".txt":
		return plainText(path)
	case ".md", ".markdown":
		return markdownText(path)
	case ".html", ".htm":
		return htmlText(path)
	case ".xlsx":
		return xlsxText(path)
	case ".ods":
		return odsText(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

func pdfText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // unreadable page, keep the rest
		}
		pages = append(pages, text)
	}
	return strings.Join(pages, "\n\n"), nil
}

func docxText(path string) (string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer r.Close()

	// GetContent yields the raw document XML; pull the text runs out,
	// paragraph by paragraph.
	content := r.Editable().GetContent()
	return xmlParagraphs(content, "</w:p>", "<w:t", "</w:t>"), nil
}

func pptxText(path string) (string, error) {
	f, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("read pptx: %w", err)
	}
	defer f.Close()

	// Slide entries are not ordered inside the archive.
	var names []string
	byName := make(map[string]*zip.File)
	for _, file := range f.File {
		if strings.HasPrefix(file.Name, "ppt/slides/slide") && strings.HasSuffix(file.Name, ".xml") {
			names = append(names, file.Name)
			byName[file.Name] = file
		}
	}
	sort.Strings(names)

	var slides []string
	for _, name := range names {
		rc, err := byName[name].Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		if text := xmlParagraphs(string(data), "</a:p>", "<a:t", "</a:t>"); strings.TrimSpace(text) != "" {
			slides = append(slides, text)
		}
	}
	return strings.Join(slides, "\n\n"), nil
}

// xmlParagraphs collects text runs per paragraph and joins the paragraphs
// with blank lines, so downstream chunk boundaries can snap to them.
func xmlParagraphs(content, paraClose, openTag, closeTag string) string {
	var paras []string
	for _, part := range strings.Split(content, paraClose) {
		if text := xmlRuns(part, openTag, closeTag); text != "" {
			paras = append(paras, text)
		}
	}
	return strings.Join(paras, "\n\n")
}

// xmlRuns collects the character data of every openTag...closeTag run.
func xmlRuns(content, openTag, closeTag string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, openTag)
		if start < 0 {
			break
		}
		rest := content[start+len(openTag):]
		gt := strings.IndexByte(rest, '>')
		if gt < 0 {
			break
		}
		rest = rest[gt+1:]
		end := strings.Index(rest, closeTag)
		if end < 0 {
			break
		}
		b.WriteString(rest[:end])
		b.WriteByte(' ')
		content = rest[end+len(closeTag):]
	}
	return strings.TrimSpace(b.String())
}

func plainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if looksBinary(data) {
		return "", fmt.Errorf("%w: binary content", ErrUnsupported)
	}
	return string(data), nil
}

// markdownText parses the document and walks the AST collecting text nodes,
// preserving paragraph boundaries for the chunker.
func markdownText(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if looksBinary(src) {
		return "", fmt.Errorf("%w: binary content", ErrUnsupported)
	}

	root := goldmark.New().Parser().Parse(gmtext.NewReader(src))
	var b strings.Builder
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				b.Write(t.Segment.Value(src))
				if t.SoftLineBreak() || t.HardLineBreak() {
					b.WriteByte('\n')
				}
			}
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindParagraph, ast.KindHeading, ast.KindListItem, ast.KindCodeBlock, ast.KindFencedCodeBlock:
			b.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

func htmlText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if looksBinary(data) {
		return "", fmt.Errorf("%w: binary content", ErrUnsupported)
	}
	return strings.TrimSpace(tagRe.ReplaceAllString(string(data), " ")), nil
}

func xlsxText(path string) (string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("read xlsx: %w", err)
	}

	var b strings.Builder
	for _, sheet := range f.Sheets {
		fmt.Fprintf(&b, "Sheet: %s\n", sheet.Name)
		for _, row := range sheet.Rows {
			cells := make([]string, 0, len(row.Cells))
			for _, cell := range row.Cells {
				cells = append(cells, cell.String())
			}
			b.WriteString(strings.TrimRight(strings.Join(cells, "\t"), "\t"))
			b.WriteByte('\n')
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

func odsText(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("read ods: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "Sheet: %s\n", sheetName)
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// looksBinary sniffs the leading bytes for NULs.
func looksBinary(data []byte) bool {
	head := data
	if len(head) > 2048 {
		head = head[:2048]
	}
	return bytes.IndexByte(head, 0) >= 0
}
