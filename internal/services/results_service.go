package services

import "time"

type ResultsStore interface {
	ListResults() ([]*ParticipantResult, error)
	ListAnswerLog() ([]*AnswerLogEntry, error)
	Summary() (*StudySummary, error)
	AddAudit(entry AuditEntry)
}

// ResultsService serves the researcher read surface: CSV exports and
// the enrollment summary. Reads never mutate collected data; the
// journal's append-only rows are exported in full.
type ResultsService struct {
	store ResultsStore
	now   func() time.Time
}

func NewResultsService(store ResultsStore) *ResultsService {
	return &ResultsService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// ExportCSV renders collected data in the requested format and returns
// the bytes with a download filename. "wide" is one participant per
// row; "long" is the raw answer log.
func (s *ResultsService) ExportCSV(format, actor string) ([]byte, string, error) {
	var (
		data []byte
		name string
	)
	switch format {
	case "", "wide":
		results, err := s.store.ListResults()
		if err != nil {
			return nil, "", storeErr(err)
		}
		data, err = ExportWideCSV(results)
		if err != nil {
			return nil, "", err
		}
		name = "results_wide.csv"
	case "long":
		entries, err := s.store.ListAnswerLog()
		if err != nil {
			return nil, "", storeErr(err)
		}
		data, err = ExportLongCSV(entries)
		if err != nil {
			return nil, "", err
		}
		name = "results_long.csv"
	default:
		return nil, "", NewInvalidValueError("unsupported format")
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "export", Note: name})
	return data, name, nil
}

func (s *ResultsService) Summary(actor string) (*StudySummary, error) {
	sum, err := s.store.Summary()
	if err != nil {
		return nil, storeErr(err)
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: actor, Action: "summary"})
	return sum, nil
}
