package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avivlab/stressexp/internal/api"
)

// JournalStore keeps a narrow participants table plus an append-only
// answers journal. Resubmitting a stage appends a new row; earlier rows
// are retained for audit and never rewritten.
type JournalStore struct {
	commonStore
}

func NewJournalStore(sqliteDB *sql.DB) (*JournalStore, error) {
	if sqliteDB == nil {
		return nil, errors.New("nil db")
	}
	return &JournalStore{commonStore: commonStore{db: sqliteDB, tag: "journal"}}, nil
}

func (s *JournalStore) AddParticipant(p *api.Participant) error {
	if p == nil {
		return errors.New("nil participant")
	}
	_, err := s.db.Exec(
		`INSERT INTO participants (id, stress_condition, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Condition, formatTime(p.CreatedAt))
	return mapInsertErr(err)
}

func (s *JournalStore) ParticipantExists(id string) (bool, error) {
	row := s.db.QueryRow(`SELECT 1 FROM participants WHERE id = ?`, id)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check participant: %w", err)
	}
	return true, nil
}

func (s *JournalStore) MarkComplete(id string, at time.Time) (bool, error) {
	res, err := s.db.Exec(`UPDATE participants SET completed_at = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return false, fmt.Errorf("mark complete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark complete: %w", err)
	}
	return n > 0, nil
}

// SaveAnswer appends the canonical payload; this is the journal's half
// of the per-variant write fork.
func (s *JournalStore) SaveAnswer(a *api.StageAnswer) error {
	if a == nil {
		return errors.New("nil answer")
	}
	payload := string(a.Payload)
	if payload == "" {
		payload = "null"
	}
	_, err := s.db.Exec(
		`INSERT INTO answers (participant_id, stage, data, created_at) VALUES (?, ?, ?, ?)`,
		a.ParticipantID, a.Stage, payload, formatTime(a.SubmittedAt))
	return execErr("append answer", err)
}

// ListResults renders one row per participant for the wide export. Each
// stage column holds the payload of the stage's most recent journal row;
// the journal itself keeps every row.
func (s *JournalStore) ListResults() ([]*api.ParticipantResult, error) {
	rows, err := s.db.Query(`SELECT id, stress_condition, created_at, completed_at
        FROM participants ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListResults: rows.Close", cerr)
		}
	}()

	var out []*api.ParticipantResult
	index := map[string]*api.ParticipantResult{}
	for rows.Next() {
		var (
			id                 string
			condition          int
			created, completed sql.NullString
		)
		if err := rows.Scan(&id, &condition, &created, &completed); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		res := &api.ParticipantResult{
			ID:          id,
			Condition:   condition,
			CreatedAt:   parseTime(created.String),
			CompletedAt: parseNullTime(completed),
			Fields:      map[string]string{},
		}
		out = append(out, res)
		index[id] = res
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	entries, err := s.ListAnswerLog()
	if err != nil {
		return nil, err
	}
	// Entries arrive oldest first, so the latest submission per stage wins.
	for _, e := range entries {
		if res, ok := index[e.ParticipantID]; ok {
			res.Fields[e.Stage] = e.Payload
		}
	}
	return out, nil
}

func (s *JournalStore) ListAnswerLog() ([]*api.AnswerLogEntry, error) {
	rows, err := s.db.Query(`SELECT participant_id, stage, data, created_at
        FROM answers ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListAnswerLog: rows.Close", cerr)
		}
	}()

	var out []*api.AnswerLogEntry
	for rows.Next() {
		var (
			e       api.AnswerLogEntry
			data    sql.NullString
			created string
		)
		if err := rows.Scan(&e.ParticipantID, &e.Stage, &data, &created); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		e.Payload = data.String
		e.CreatedAt = parseTime(created)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return out, nil
}

func (s *JournalStore) Summary() (*api.StudySummary, error) {
	row := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(stress_condition), 0), COUNT(completed_at) FROM participants`)
	var total, stressed, completed int
	if err := row.Scan(&total, &stressed, &completed); err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	return &api.StudySummary{
		Participants: total,
		Completed:    completed,
		ByCondition:  [2]int{total - stressed, stressed},
	}, nil
}

var _ api.Store = (*JournalStore)(nil)
