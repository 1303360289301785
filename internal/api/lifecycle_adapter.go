package api

import (
	"errors"
	"time"

	"github.com/avivlab/stressexp/internal/services"
)

type lifecycleStoreAdapter struct {
	store Store
}

func newLifecycleStoreAdapter(store Store) services.LifecycleStore {
	return &lifecycleStoreAdapter{store: store}
}

func (a *lifecycleStoreAdapter) AddParticipant(p *services.Participant) error {
	err := a.store.AddParticipant(&Participant{ID: p.ID, Condition: p.Condition, CreatedAt: p.CreatedAt})
	if errors.Is(err, ErrDuplicateID) {
		return services.NewDuplicateIDError("participant id collision")
	}
	return err
}

func (a *lifecycleStoreAdapter) ParticipantExists(id string) (bool, error) {
	return a.store.ParticipantExists(id)
}

func (a *lifecycleStoreAdapter) MarkComplete(id string, at time.Time) (bool, error) {
	return a.store.MarkComplete(id, at)
}

func (a *lifecycleStoreAdapter) SaveAnswer(ans *services.StageAnswer) error {
	rec := &StageAnswer{
		ParticipantID: ans.ParticipantID,
		Stage:         ans.Stage,
		Repression:    ans.Repression,
		ConsentGiven:  ans.ConsentGiven,
		Rating:        ans.Rating,
		Payload:       ans.Payload,
		SubmittedAt:   ans.SubmittedAt,
	}
	if d := ans.Demographics; d != nil {
		rec.Demographics = &Demographics{
			Age:           d.Age,
			Gender:        d.Gender,
			SpeakEnglish:  d.SpeakEnglish,
			Residence:     d.Residence,
			Socioeconomic: d.Socioeconomic,
			MaritalStatus: d.MaritalStatus,
			Education:     d.Education,
		}
	}
	return a.store.SaveAnswer(rec)
}

var _ services.LifecycleStore = (*lifecycleStoreAdapter)(nil)
