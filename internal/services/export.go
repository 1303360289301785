package services

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"
	"time"
)

// ExportWideCSV renders one row per participant with a column for every
// collected field, sorted for stable output. Condition and lifecycle
// timestamps lead the row.
func ExportWideCSV(results []*ParticipantResult) ([]byte, error) {
	fieldSet := map[string]struct{}{}
	for _, res := range results {
		for f := range res.Fields {
			fieldSet[f] = struct{}{}
		}
	}
	fields := make([]string, 0, len(fieldSet))
	for f := range fieldSet {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	sorted := append([]*ParticipantResult(nil), results...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := append([]string{"participant_id", "stress_condition", "created_at", "completed_at"}, fields...)
	_ = w.Write(header)
	for _, res := range sorted {
		completed := ""
		if res.CompletedAt != nil {
			completed = res.CompletedAt.Format(time.RFC3339)
		}
		row := make([]string, 0, len(header))
		row = append(row, res.ID, strconv.Itoa(res.Condition), res.CreatedAt.Format(time.RFC3339), completed)
		for _, f := range fields {
			row = append(row, res.Fields[f])
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportLongCSV renders the answer log row by row, preserving every
// stored submission including resubmitted stages.
func ExportLongCSV(entries []*AnswerLogEntry) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"participant_id", "stage", "payload", "created_at"})
	for _, e := range entries {
		rec := []string{e.ParticipantID, e.Stage, e.Payload, e.CreatedAt.Format(time.RFC3339)}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
