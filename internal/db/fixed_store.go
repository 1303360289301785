package db

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/avivlab/stressexp/internal/api"
	"github.com/avivlab/stressexp/internal/services"
)

// FixedStore keeps one wide row per participant; every stage submission
// overwrites that stage's named columns in place.
type FixedStore struct {
	commonStore
}

func NewFixedStore(sqliteDB *sql.DB) (*FixedStore, error) {
	if sqliteDB == nil {
		return nil, errors.New("nil db")
	}
	return &FixedStore{commonStore: commonStore{db: sqliteDB, tag: "fixed"}}, nil
}

func (s *FixedStore) AddParticipant(p *api.Participant) error {
	if p == nil {
		return errors.New("nil participant")
	}
	_, err := s.db.Exec(
		`INSERT INTO experiment_results (participant_id, stress_condition, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Condition, formatTime(p.CreatedAt))
	return mapInsertErr(err)
}

func (s *FixedStore) ParticipantExists(id string) (bool, error) {
	row := s.db.QueryRow(`SELECT 1 FROM experiment_results WHERE participant_id = ?`, id)
	var one int
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check participant: %w", err)
	}
	return true, nil
}

func (s *FixedStore) MarkComplete(id string, at time.Time) (bool, error) {
	res, err := s.db.Exec(`UPDATE experiment_results SET completed_at = ? WHERE participant_id = ?`,
		formatTime(at), id)
	if err != nil {
		return false, fmt.Errorf("mark complete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark complete: %w", err)
	}
	return n > 0, nil
}

// SaveAnswer overwrites the columns belonging to the submitted stage.
// A resubmitted stage replaces the earlier values; this is the fixed
// variant's half of the per-variant write fork.
func (s *FixedStore) SaveAnswer(a *api.StageAnswer) error {
	if a == nil {
		return errors.New("nil answer")
	}
	switch a.Stage {
	case services.StageConsent:
		_, err := s.db.Exec(`UPDATE experiment_results SET consent_given = ? WHERE participant_id = ?`,
			nullIntPtr(a.ConsentGiven), a.ParticipantID)
		return execErr("save consent", err)
	case services.StageDemographics:
		d := a.Demographics
		if d == nil {
			return errors.New("demographics payload missing")
		}
		_, err := s.db.Exec(`UPDATE experiment_results SET
            age = ?, gender = ?, speak_english = ?, residence = ?,
            socioeconomic = ?, marital_status = ?, education = ?
            WHERE participant_id = ?`,
			d.Age, d.Gender, toNullString(d.SpeakEnglish), toNullString(d.Residence),
			toNullString(d.Socioeconomic), toNullString(d.MaritalStatus), toNullString(d.Education),
			a.ParticipantID)
		return execErr("save demographics", err)
	case services.StageRepression:
		if len(a.Repression) != services.RepressionItemCount {
			return fmt.Errorf("repression scores incomplete: got %d", len(a.Repression))
		}
		cols := make([]string, 0, services.RepressionItemCount)
		args := make([]any, 0, services.RepressionItemCount+1)
		for i, score := range a.Repression {
			cols = append(cols, fmt.Sprintf("repression_q%d = ?", i+1))
			args = append(args, score)
		}
		args = append(args, a.ParticipantID)
		query := fmt.Sprintf(`UPDATE experiment_results SET %s WHERE participant_id = ?`, strings.Join(cols, ", "))
		_, err := s.db.Exec(query, args...)
		return execErr("save repression", err)
	case services.StageRating:
		_, err := s.db.Exec(`UPDATE experiment_results SET stress_level = ? WHERE participant_id = ?`,
			nullIntPtr(a.Rating), a.ParticipantID)
		return execErr("save rating", err)
	}
	return fmt.Errorf("fixed schema cannot store stage %q", a.Stage)
}

func (s *FixedStore) ListResults() ([]*api.ParticipantResult, error) {
	rows, err := s.db.Query(`SELECT participant_id, consent_given,
        age, gender, speak_english, residence, socioeconomic, marital_status, education,
        repression_q1, repression_q2, repression_q3, repression_q4, repression_q5,
        repression_q6, repression_q7, repression_q8, repression_q9, repression_q10,
        repression_q11, repression_q12, repression_q13, repression_q14, repression_q15,
        stress_condition, stress_level, created_at, completed_at
        FROM experiment_results ORDER BY created_at ASC, participant_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.logErr("ListResults: rows.Close", cerr)
		}
	}()

	var out []*api.ParticipantResult
	for rows.Next() {
		var (
			id                 string
			consent            sql.NullInt64
			age                sql.NullInt64
			gender             sql.NullString
			speak              sql.NullString
			residence          sql.NullString
			socio              sql.NullString
			marital            sql.NullString
			education          sql.NullString
			rep                [15]sql.NullInt64
			condition          int
			rating             sql.NullInt64
			created, completed sql.NullString
		)
		scanArgs := []any{&id, &consent, &age, &gender, &speak, &residence, &socio, &marital, &education}
		for i := range rep {
			scanArgs = append(scanArgs, &rep[i])
		}
		scanArgs = append(scanArgs, &condition, &rating, &created, &completed)
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}

		fields := map[string]string{}
		putInt := func(key string, v sql.NullInt64) {
			if v.Valid {
				fields[key] = fmt.Sprintf("%d", v.Int64)
			}
		}
		putStr := func(key string, v sql.NullString) {
			if v.Valid {
				fields[key] = v.String
			}
		}
		putInt("consent_given", consent)
		putInt("age", age)
		putStr("gender", gender)
		putStr("speak_english", speak)
		putStr("residence", residence)
		putStr("socioeconomic", socio)
		putStr("marital_status", marital)
		putStr("education", education)
		for i, v := range rep {
			putInt(fmt.Sprintf("repression_q%d", i+1), v)
		}
		putInt("stress_level", rating)

		out = append(out, &api.ParticipantResult{
			ID:          id,
			Condition:   condition,
			CreatedAt:   parseTime(created.String),
			CompletedAt: parseNullTime(completed),
			Fields:      fields,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return out, nil
}

// ListAnswerLog synthesizes long-form rows from the wide table. The
// fixed schema keeps no per-stage timestamps, so each entry reuses the
// participant's creation time.
func (s *FixedStore) ListAnswerLog() ([]*api.AnswerLogEntry, error) {
	results, err := s.ListResults()
	if err != nil {
		return nil, err
	}
	var out []*api.AnswerLogEntry
	for _, res := range results {
		keys := make([]string, 0, len(res.Fields))
		for k := range res.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = append(out, &api.AnswerLogEntry{
				ParticipantID: res.ID,
				Stage:         k,
				Payload:       res.Fields[k],
				CreatedAt:     res.CreatedAt,
			})
		}
	}
	return out, nil
}

func (s *FixedStore) Summary() (*api.StudySummary, error) {
	row := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(stress_condition), 0), COUNT(completed_at) FROM experiment_results`)
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

func execErr(prefix string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", prefix, err)
	}
	return nil
}

var _ api.Store = (*FixedStore)(nil)
