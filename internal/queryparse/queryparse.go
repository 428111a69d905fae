// Package queryparse splits a free-text query into ranking criteria: search
// keywords, an optional time window, and an extension allow-list inferred
// from type-category words such as "pdf files" or "spreadsheets".
package queryparse

import (
	"regexp"
	"strings"
	"time"

	"localfind/internal/timeparse"
)

// Parsed is the structured form of one query string.
type Parsed struct {
	// Keywords are the residual search terms, date and noise tokens removed.
	Keywords []string
	// Phrase is the keywords in original order, used for the in-order bonus.
	Phrase string
	// Window is nil when no temporal phrase was recognized.
	Window *timeparse.TimeWindow
	// Extensions is the allow-list inferred from type-category words
	// (lowercase, with leading dot). Empty means all types.
	Extensions []string
	// TypeRequested reports whether the user explicitly named a category.
	TypeRequested bool
}

var stopwords = map[string]bool{
	"find": true, "show": true, "get": true, "open": true, "search": true,
	"the": true, "a": true, "an": true, "me": true, "my": true, "i": true,
	"of": true, "for": true, "about": true, "with": true, "that": true,
	"this": true, "these": true, "those": true, "recent": true, "latest": true,
	"file": true, "files": true, "document": true, "documents": true,
	"folder": true, "from": true, "in": true, "on": true, "last": true,
}

// noise tokens only dropped once a time window parsed: they qualified the
// temporal phrase, not the content.
var timeNoise = map[string]bool{
	"edited": true, "created": true, "modified": true, "updated": true,
	"made": true, "during": true, "between": true, "to": true, "at": true,
	"since": true, "before": true, "after": true,
}

var monthTokens = map[string]bool{
	"jan": true, "january": true, "feb": true, "february": true,
	"mar": true, "march": true, "apr": true, "april": true, "may": true,
	"jun": true, "june": true, "jul": true, "july": true,
	"aug": true, "august": true, "sep": true, "sept": true, "september": true,
	"oct": true, "october": true, "nov": true, "november": true,
	"dec": true, "december": true,
}

// categories maps type-category words to extension allow-lists.
var categories = map[string][]string{
	"pdf":           {".pdf"},
	"pdfs":          {".pdf"},
	"doc":           {".doc", ".docx"},
	"docs":          {".doc", ".docx"},
	"word":          {".doc", ".docx"},
	"slide":         {".ppt", ".pptx", ".key"},
	"slides":        {".ppt", ".pptx", ".key"},
	"presentation":  {".ppt", ".pptx", ".key"},
	"presentations": {".ppt", ".pptx", ".key"},
	"spreadsheet":   {".xls", ".xlsx", ".csv", ".ods"},
	"spreadsheets":  {".xls", ".xlsx", ".csv", ".ods"},
	"image":         {".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".webp"},
	"images":        {".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".webp"},
	"photo":         {".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".webp"},
	"photos":        {".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".webp"},
	"text":          {".txt", ".md", ".rtf"},
	"notes":         {".txt", ".md", ".rtf"},
	"markdown":      {".md", ".markdown"},
	"code":          {".py", ".js", ".ts", ".go", ".java", ".c", ".cpp", ".rs", ".rb"},
}

var (
	quotedRe = regexp.MustCompile(`"([^"]+)"`)
	wordRe   = regexp.MustCompile(`[A-Za-z0-9_\-]+`)
	yearRe   = regexp.MustCompile(`^20\d{2}$`)
)

// Parse extracts keywords, time window, and type filters from q, resolved
// relative to now.
func Parse(q string, now time.Time) Parsed {
	window, residual := timeparse.Parse(q, now)

	// Quoted phrases survive verbatim.
	var quoted []string
	for _, m := range quotedRe.FindAllStringSubmatch(residual, -1) {
		quoted = append(quoted, m[1])
	}
	residual = quotedRe.ReplaceAllString(residual, " ")

	p := Parsed{Window: window}
	var keywords []string
	for _, w := range wordRe.FindAllString(residual, -1) {
		wl := strings.ToLower(w)
		if exts, ok := categories[wl]; ok {
			p.Extensions = mergeExts(p.Extensions, exts)
			p.TypeRequested = true
			continue
		}
		if stopwords[wl] {
			continue
		}
		if window != nil {
			if timeNoise[wl] || monthTokens[wl] || yearRe.MatchString(wl) {
				continue
			}
		}
		keywords = append(keywords, w)
	}

	p.Keywords = append(quoted, keywords...)
	p.Phrase = strings.Join(p.Keywords, " ")
	return p
}

func mergeExts(have, add []string) []string {
	seen := make(map[string]bool, len(have))
	for _, e := range have {
		seen[e] = true
	}
	for _, e := range add {
		if !seen[e] {
			have = append(have, e)
			seen[e] = true
		}
	}
	return have
}
