package textsource

import (
	"bufio"
	"io"
	"strings"
)

// TextParser handles plain text files. Form feeds delimit pages; a file
// without form feeds is a single page.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, _ string) ([]PageText, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var sb strings.Builder
	for scanner.Scan() {
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var pages []PageText
	for i, raw := range strings.Split(sb.String(), "\f") {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		pages = append(pages, PageText{Page: i + 1, Text: text})
	}
	return pages, nil
}
