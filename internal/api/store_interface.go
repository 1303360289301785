package api

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrDuplicateID is returned by stores when a participant insert hits
// the primary-key constraint.
var ErrDuplicateID = errors.New("participant id already exists")

type Participant struct {
	ID          string     `json:"participant_id"`
	Condition   int        `json:"stress_condition"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type Demographics struct {
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	SpeakEnglish  string `json:"speak_english,omitempty"`
	Residence     string `json:"residence,omitempty"`
	Socioeconomic string `json:"socioeconomic,omitempty"`
	MaritalStatus string `json:"marital_status,omitempty"`
	Education     string `json:"education,omitempty"`
}

// StageAnswer is a validated stage submission. The typed fields cover
// the fixed-column schema; Payload is what the journaled schema appends.
type StageAnswer struct {
	ParticipantID string
	Stage         string
	Demographics  *Demographics
	Repression    []int
	ConsentGiven  *int
	Rating        *int
	Payload       json.RawMessage
	SubmittedAt   time.Time
}

type ParticipantResult struct {
	ID          string
	Condition   int
	CreatedAt   time.Time
	CompletedAt *time.Time
	Fields      map[string]string
}

type AnswerLogEntry struct {
	ParticipantID string
	Stage         string
	Payload       string
	CreatedAt     time.Time
}

type StudySummary struct {
	Participants int    `json:"participants"`
	Completed    int    `json:"completed"`
	ByCondition  [2]int `json:"by_condition"`
}

type Researcher struct {
	ID        string
	Email     string
	PassHash  []byte
	CreatedAt time.Time
}

type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}

// Store is the persistence contract both schema variants implement.
// Writes are single statements; callers pair an existence check with
// one write per request and tolerate last-write-wins races.
type Store interface {
	AddParticipant(p *Participant) error
	ParticipantExists(id string) (bool, error)
	MarkComplete(id string, at time.Time) (bool, error)
	// SaveAnswer's semantics fork per variant: the fixed-column store
	// overwrites the stage's columns in place, the journaled store
	// appends a new row on every call.
	SaveAnswer(a *StageAnswer) error

	ListResults() ([]*ParticipantResult, error)
	ListAnswerLog() ([]*AnswerLogEntry, error)
	Summary() (*StudySummary, error)

	AddResearcher(r *Researcher) error
	FindResearcherByEmail(email string) (*Researcher, error)

	AddAudit(e AuditEntry)
}
