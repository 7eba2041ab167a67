package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSVExporter renders sections into a single CSV stream. Each section is
// prefixed with a one-cell title row and separated by an empty record.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the sections.
func (e *CSVExporter) Render(sections []Section) ([]byte, error) {
	if len(sections) == 0 {
		return nil, fmt.Errorf("csv requires at least one section")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	for i, section := range sections {
		if len(section.Data.Headers) == 0 {
			return nil, fmt.Errorf("csv section %q has no headers", section.Title)
		}
		if i > 0 {
			if err := writer.Write([]string{""}); err != nil {
				return nil, fmt.Errorf("write csv separator: %w", err)
			}
		}
		if section.Title != "" {
			if err := writer.Write([]string{section.Title}); err != nil {
				return nil, fmt.Errorf("write csv title: %w", err)
			}
		}
		if err := writer.Write(section.Data.Headers); err != nil {
			return nil, fmt.Errorf("write csv headers: %w", err)
		}
		for _, row := range section.Data.Rows {
			record := make([]string, len(section.Data.Headers))
			for j, header := range section.Data.Headers {
				record[j] = row[header]
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
