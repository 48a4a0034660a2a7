// Package textsource converts documents of various formats into plain
// per-page text streams for the text-only n-gram matching backend.
package textsource

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// PageText is the concatenated text of one page (or pseudo-page for
// formats without physical pages).
type PageText struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// Parser converts raw document bytes into per-page text.
type Parser interface {
	Parse(r io.Reader, filename string) ([]PageText, error)
}

// SupportedExtensions lists file extensions this package can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Corpus joins pages into one text stream and records, for every word in
// the stream, the page it came from. The word-page index lets n-gram match
// ranges be mapped back to page numbers.
type Corpus struct {
	Text      string
	WordPages []int // page number of each whitespace-separated word
}

// BuildCorpus flattens parsed pages into a single searchable corpus.
func BuildCorpus(pages []PageText) Corpus {
	var sb strings.Builder
	var wordPages []int
	for _, p := range pages {
		words := strings.Fields(p.Text)
		if len(words) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.Join(words, " "))
		for range words {
			wordPages = append(wordPages, p.Page)
		}
	}
	return Corpus{Text: sb.String(), WordPages: wordPages}
}

// PageOfWord returns the page containing a word index, or 0 when the
// index is out of range.
func (c Corpus) PageOfWord(i int) int {
	if i < 0 || i >= len(c.WordPages) {
		return 0
	}
	return c.WordPages[i]
}
