package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Run     RunMetadata `json:"run"`
	Steps   int         `json:"steps"`
	Records []Record    `json:"records"`
}

// ExportJSON writes run metadata and rounded records as indented JSON.
func ExportJSON(w io.Writer, meta RunMetadata, records []Record) error {
	rounded := make([]Record, len(records))
	for i, r := range records {
		rounded[i] = r.Rounded()
	}

	steps := 0
	if len(meta.Bodies) > 0 {
		steps = len(records) / len(meta.Bodies)
	}

	data := ExportData{
		Run:     meta,
		Steps:   steps,
		Records: rounded,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
