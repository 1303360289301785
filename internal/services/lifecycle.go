package services

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DemographicsVariant selects which demographic schema a deployment runs.
type DemographicsVariant string

const (
	DemographicsBasic    DemographicsVariant = "basic"
	DemographicsExtended DemographicsVariant = "extended"
)

// LifecycleStore abstracts the persistence operations the participant
// lifecycle needs. Implementations must enforce id uniqueness at write
// time rather than assuming it.
type LifecycleStore interface {
	AddParticipant(p *Participant) error
	ParticipantExists(id string) (bool, error)
	// MarkComplete stamps completed_at, overwriting any earlier value.
	// Returns false when no participant with that id exists.
	MarkComplete(id string, at time.Time) (bool, error)
	SaveAnswer(a *StageAnswer) error
}

// LifecycleService orchestrates participant creation, stage submission
// and completion. Stages carry no ordering guard: any stage may be
// submitted repeatedly, out of sequence, or after completion.
type LifecycleService struct {
	store        LifecycleStore
	demographics DemographicsVariant
	now          func() time.Time
	idGen        func() string
	draw         func() int
}

func NewLifecycleService(store LifecycleStore, demographics DemographicsVariant) *LifecycleService {
	if demographics == "" {
		demographics = DemographicsBasic
	}
	return &LifecycleService{
		store:        store,
		demographics: demographics,
		now:          func() time.Time { return time.Now().UTC() },
		idGen:        uuid.NewString,
		draw:         DrawCondition,
	}
}

// Start creates a participant: fresh id, one condition draw, creation
// timestamp. The store's uniqueness constraint backstops id collisions.
func (s *LifecycleService) Start() (*Participant, error) {
	p := &Participant{ID: s.idGen(), Condition: s.draw(), CreatedAt: s.now()}
	if err := s.store.AddParticipant(p); err != nil {
		return nil, storeErr(err)
	}
	return p, nil
}

// SubmitDemographics validates against the deployment's demographic
// schema and persists the normalized record.
func (s *LifecycleService) SubmitDemographics(participantID string, in DemographicsInput) error {
	var (
		d   *Demographics
		err error
	)
	if s.demographics == DemographicsExtended {
		d, err = ValidateDemographicsExtended(in)
	} else {
		d, err = ValidateDemographicsBasic(in)
	}
	if err != nil {
		return err
	}
	return s.submit(participantID, &StageAnswer{Stage: StageDemographics, Demographics: d, Payload: mustJSON(d)})
}

func (s *LifecycleService) SubmitConsent(participantID string, in ConsentInput) error {
	given, err := ValidateConsent(in)
	if err != nil {
		return err
	}
	return s.submit(participantID, &StageAnswer{
		Stage:        StageConsent,
		ConsentGiven: &given,
		Payload:      mustJSON(map[string]int{"consent_given": given}),
	})
}

func (s *LifecycleService) SubmitRepression(participantID string, items []RepressionItemInput) error {
	scores, err := ValidateRepression(items)
	if err != nil {
		return err
	}
	type payloadItem struct {
		QIndex int `json:"qIndex"`
		Score  int `json:"score"`
	}
	resolved := make([]payloadItem, len(scores))
	for i, sc := range scores {
		resolved[i] = payloadItem{QIndex: i + 1, Score: sc}
	}
	return s.submit(participantID, &StageAnswer{Stage: StageRepression, Repression: scores, Payload: mustJSON(resolved)})
}

func (s *LifecycleService) SubmitRating(participantID string, in RatingInput) error {
	rating, err := ValidateRating(in)
	if err != nil {
		return err
	}
	return s.submit(participantID, &StageAnswer{
		Stage:   StageRating,
		Rating:  &rating,
		Payload: mustJSON(map[string]int{"rating": rating}),
	})
}

// SubmitFreeform persists an opaque payload for an allow-listed stage.
// Only the journaled schema supports it; the store rejects it otherwise.
func (s *LifecycleService) SubmitFreeform(participantID, stage string, data json.RawMessage) error {
	if err := ValidateStageName(stage); err != nil {
		return err
	}
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return s.submit(participantID, &StageAnswer{Stage: stage, Payload: data})
}

// Finish stamps completed_at. Repeating the call overwrites the
// timestamp rather than failing.
func (s *LifecycleService) Finish(participantID string) error {
	if strings.TrimSpace(participantID) == "" {
		return NewMissingFieldError("participant_id is required")
	}
	ok, err := s.store.MarkComplete(participantID, s.now())
	if err != nil {
		return storeErr(err)
	}
	if !ok {
		return NewNotFoundError("participant_id not found")
	}
	return nil
}

func (s *LifecycleService) submit(participantID string, a *StageAnswer) error {
	if strings.TrimSpace(participantID) == "" {
		return NewMissingFieldError("participant_id is required")
	}
	ok, err := s.store.ParticipantExists(participantID)
	if err != nil {
		return storeErr(err)
	}
	if !ok {
		return NewNotFoundError("participant_id not found")
	}
	a.ParticipantID = participantID
	a.SubmittedAt = s.now()
	if err := s.store.SaveAnswer(a); err != nil {
		return storeErr(err)
	}
	return nil
}

// storeErr passes ServiceErrors through and reports anything else as a
// storage failure, so a broken store never crashes request handling.
func storeErr(err error) error {
	if _, ok := AsServiceError(err); ok {
		return err
	}
	return NewStorageUnavailableError(err.Error())
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
