package services

import (
	"strings"
	"testing"
	"time"
)

type stubResultsStore struct {
	results []*ParticipantResult
	log     []*AnswerLogEntry
	summary *StudySummary
	audits  []AuditEntry
}

func (s *stubResultsStore) ListResults() ([]*ParticipantResult, error) { return s.results, nil }
func (s *stubResultsStore) ListAnswerLog() ([]*AnswerLogEntry, error)  { return s.log, nil }
func (s *stubResultsStore) Summary() (*StudySummary, error)            { return s.summary, nil }
func (s *stubResultsStore) AddAudit(entry AuditEntry)                  { s.audits = append(s.audits, entry) }

func TestExportWideCSV(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	done := created.Add(20 * time.Minute)
	store := &stubResultsStore{results: []*ParticipantResult{
		{
			ID:        "p2",
			Condition: 1,
			CreatedAt: created,
			Fields:    map[string]string{"age": "41", "gender": "female"},
		},
		{
			ID:          "p1",
			Condition:   0,
			CreatedAt:   created,
			CompletedAt: &done,
			Fields:      map[string]string{"age": "25", "stress_level": "6"},
		},
	}}
	svc := NewResultsService(store)

	data, name, err := svc.ExportCSV("wide", "r1")
	if err != nil {
		t.Fatalf("ExportCSV error: %v", err)
	}
	if name != "results_wide.csv" {
		t.Fatalf("unexpected filename %q", name)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d lines:\n%s", len(lines), data)
	}
	// Field columns are the union, sorted, after the lifecycle columns.
	wantHeader := "participant_id,stress_condition,created_at,completed_at,age,gender,stress_level"
	if lines[0] != wantHeader {
		t.Fatalf("header = %q, want %q", lines[0], wantHeader)
	}
	// Rows come back ordered by participant id.
	if !strings.HasPrefix(lines[1], "p1,0,") || !strings.HasPrefix(lines[2], "p2,1,") {
		t.Fatalf("rows out of order:\n%s", data)
	}
	if !strings.HasSuffix(lines[1], ",25,,6") {
		t.Fatalf("p1 field cells wrong: %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], ",41,female,") {
		t.Fatalf("p2 field cells wrong: %q", lines[2])
	}

	if len(store.audits) != 1 || store.audits[0].Action != "export" || store.audits[0].Actor != "r1" {
		t.Fatalf("export not audited: %+v", store.audits)
	}
}

func TestExportLongCSV(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC)
	store := &stubResultsStore{log: []*AnswerLogEntry{
		{ParticipantID: "p1", Stage: "rating", Payload: `{"rating":6}`, CreatedAt: at},
		{ParticipantID: "p1", Stage: "rating", Payload: `{"rating":8}`, CreatedAt: at.Add(time.Minute)},
	}}
	svc := NewResultsService(store)

	data, name, err := svc.ExportCSV("long", "r1")
	if err != nil {
		t.Fatalf("ExportCSV error: %v", err)
	}
	if name != "results_long.csv" {
		t.Fatalf("unexpected filename %q", name)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("resubmissions must both survive export:\n%s", data)
	}
	if lines[0] != "participant_id,stage,payload,created_at" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], `{""rating"":6}`) || !strings.Contains(lines[2], `{""rating"":8}`) {
		t.Fatalf("payload cells wrong:\n%s", data)
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := NewResultsService(&stubResultsStore{})
	_, _, err := svc.ExportCSV("xml", "r1")
	assertCode(t, err, ErrorInvalidValue)
}

func TestSummaryAudited(t *testing.T) {
	store := &stubResultsStore{summary: &StudySummary{Participants: 10, Completed: 7, ByCondition: [2]int{4, 6}}}
	svc := NewResultsService(store)

	sum, err := svc.Summary("r1")
	if err != nil {
		t.Fatalf("Summary error: %v", err)
	}
	if sum.Participants != 10 || sum.Completed != 7 || sum.ByCondition != [2]int{4, 6} {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(store.audits) != 1 || store.audits[0].Action != "summary" {
		t.Fatalf("summary not audited: %+v", store.audits)
	}
}
