package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/avivlab/stressexp/internal/api"
)

// commonStore carries the tables both schema variants share.
type commonStore struct {
	db  *sql.DB
	tag string
}

func (s *commonStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("%s store: %s: %v", s.tag, prefix, err)
	}
}

func (s *commonStore) AddResearcher(r *api.Researcher) error {
	if r == nil {
		return errors.New("nil researcher")
	}
	_, err := s.db.Exec(`INSERT INTO researchers (id, email, pass_hash, created_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.Email, r.PassHash, formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert researcher: %w", err)
	}
	return nil
}

func (s *commonStore) FindResearcherByEmail(email string) (*api.Researcher, error) {
	row := s.db.QueryRow(`SELECT id, email, pass_hash, created_at FROM researchers WHERE email = ?`, email)
	var (
		r       api.Researcher
		created string
	)
	if err := row.Scan(&r.ID, &r.Email, &r.PassHash, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find researcher: %w", err)
	}
	r.CreatedAt = parseTime(created)
	return &r, nil
}

func (s *commonStore) AddAudit(e api.AuditEntry) {
	ts := e.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO audit (ts, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`,
		formatTime(ts), e.Actor, e.Action, toNullString(e.Target), toNullString(e.Note))
	s.logErr("AddAudit", err)
}

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullIntPtr(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseNullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	t := parseTime(ns.String)
	if t.IsZero() {
		return nil
	}
	return &t
}

// mapInsertErr translates the primary-key constraint into the
// duplicate-identifier sentinel; anything else passes through.
func mapInsertErr(err error) error {
	if err == nil {
		return nil
	}
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("insert participant: %w", api.ErrDuplicateID)
	}
	return fmt.Errorf("insert participant: %w", err)
}
