package api

import "github.com/avivlab/stressexp/internal/services"

type resultsStoreAdapter struct {
	store Store
}

func newResultsStoreAdapter(store Store) services.ResultsStore {
	return &resultsStoreAdapter{store: store}
}

func (a *resultsStoreAdapter) ListResults() ([]*services.ParticipantResult, error) {
	rs, err := a.store.ListResults()
	if err != nil {
		return nil, err
	}
	out := make([]*services.ParticipantResult, 0, len(rs))
	for _, r := range rs {
		out = append(out, &services.ParticipantResult{
			ID:          r.ID,
			Condition:   r.Condition,
			CreatedAt:   r.CreatedAt,
			CompletedAt: r.CompletedAt,
			Fields:      r.Fields,
		})
	}
	return out, nil
}

func (a *resultsStoreAdapter) ListAnswerLog() ([]*services.AnswerLogEntry, error) {
	entries, err := a.store.ListAnswerLog()
	if err != nil {
		return nil, err
	}
	out := make([]*services.AnswerLogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, &services.AnswerLogEntry{
			ParticipantID: e.ParticipantID,
			Stage:         e.Stage,
			Payload:       e.Payload,
			CreatedAt:     e.CreatedAt,
		})
	}
	return out, nil
}

func (a *resultsStoreAdapter) Summary() (*services.StudySummary, error) {
	sum, err := a.store.Summary()
	if err != nil {
		return nil, err
	}
	return &services.StudySummary{Participants: sum.Participants, Completed: sum.Completed, ByCondition: sum.ByCondition}, nil
}

func (a *resultsStoreAdapter) AddAudit(entry services.AuditEntry) {
	a.store.AddAudit(AuditEntry{Time: entry.Time, Actor: entry.Actor, Action: entry.Action, Target: entry.Target, Note: entry.Note})
}

var _ services.ResultsStore = (*resultsStoreAdapter)(nil)
