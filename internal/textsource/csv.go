package textsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// csvRowsPerPage batches CSV rows into manageable pseudo-pages.
const csvRowsPerPage = 20

// CSVParser handles CSV files: rows become labeled lines, batched into pages.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, _ string) ([]PageText, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	dataRows := records[1:]

	var pages []PageText
	for i := 0; i < len(dataRows); i += csvRowsPerPage {
		end := i + csvRowsPerPage
		if end > len(dataRows) {
			end = len(dataRows)
		}

		var text strings.Builder
		for _, row := range dataRows[i:end] {
			for j, cell := range row {
				if j > 0 {
					text.WriteString(", ")
				}
				if j < len(headers) {
					text.WriteString(headers[j] + ": " + cell)
				} else {
					text.WriteString(cell)
				}
			}
			text.WriteString("\n")
		}
		pages = append(pages, PageText{Page: len(pages) + 1, Text: strings.TrimSpace(text.String())})
	}
	return pages, nil
}
