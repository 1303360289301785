package services

import (
	"encoding/json"
	"time"
)

// Stage names accepted by the collection endpoints. The free-form save
// path additionally restricts itself to the allow-list in ValidateStageName.
const (
	StageConsent      = "consent"
	StageDemographics = "demo"
	StageRepression   = "rep"
	StageManipulation = "exp"
	StageRating       = "rating"
)

// RepressionItemCount is the number of inventory items a submission must cover.
const RepressionItemCount = 15

// Participant is one respondent instance.
type Participant struct {
	ID          string     `json:"participant_id"`
	Condition   int        `json:"stress_condition"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Demographics is a validated, normalized demographic record. Basic
// deployments populate Age and Gender only; extended deployments fill
// every field.
type Demographics struct {
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	SpeakEnglish  string `json:"speak_english,omitempty"`
	Residence     string `json:"residence,omitempty"`
	Socioeconomic string `json:"socioeconomic,omitempty"`
	MaritalStatus string `json:"marital_status,omitempty"`
	Education     string `json:"education,omitempty"`
}

// StageAnswer is one validated stage submission ready for persistence.
// Typed fields feed the fixed-column schema; Payload holds the canonical
// serialized form the journaled schema appends verbatim.
type StageAnswer struct {
	ParticipantID string
	Stage         string
	Demographics  *Demographics
	Repression    []int // index i holds the resolved score for item i+1
	ConsentGiven  *int
	Rating        *int
	Payload       json.RawMessage
	SubmittedAt   time.Time
}

// ParticipantResult is the read-side view of one participant with every
// collected field rendered as a string, independent of storage variant.
type ParticipantResult struct {
	ID          string
	Condition   int
	CreatedAt   time.Time
	CompletedAt *time.Time
	Fields      map[string]string
}

// AnswerLogEntry is one stored answer row in long form.
type AnswerLogEntry struct {
	ParticipantID string
	Stage         string
	Payload       string
	CreatedAt     time.Time
}

// StudySummary aggregates enrollment and completion counts.
type StudySummary struct {
	Participants int    `json:"participants"`
	Completed    int    `json:"completed"`
	ByCondition  [2]int `json:"by_condition"`
}

// Researcher is an authenticated account on the read surface.
type Researcher struct {
	ID        string
	Email     string
	PassHash  []byte
	CreatedAt time.Time
}

type AuditEntry struct {
	Time   time.Time
	Actor  string
	Action string
	Target string
	Note   string
}
