package export

import (
	"fmt"

	"github.com/gocarina/gocsv"
)

// CSVExporter renders schedule rows with a header line.
type CSVExporter struct{}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

func (e *CSVExporter) ContentType() string { return "text/csv" }

func (e *CSVExporter) Extension() string { return "csv" }

// Render encodes the document rows. An empty document still yields the header.
func (e *CSVExporter) Render(doc Document) ([]byte, error) {
	rows := doc.Rows
	if rows == nil {
		rows = []ScheduleRow{}
	}
	out, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	return out, nil
}
