package api

import "github.com/avivlab/stressexp/internal/services"

type authStoreAdapter struct {
	store Store
}

func newAuthStoreAdapter(store Store) services.AuthStore {
	return &authStoreAdapter{store: store}
}

func (a *authStoreAdapter) FindResearcherByEmail(email string) (*services.Researcher, error) {
	r, err := a.store.FindResearcherByEmail(email)
	if err != nil || r == nil {
		return nil, err
	}
	return &services.Researcher{ID: r.ID, Email: r.Email, PassHash: r.PassHash, CreatedAt: r.CreatedAt}, nil
}

func (a *authStoreAdapter) AddResearcher(r *services.Researcher) error {
	return a.store.AddResearcher(&Researcher{ID: r.ID, Email: r.Email, PassHash: r.PassHash, CreatedAt: r.CreatedAt})
}

var _ services.AuthStore = (*authStoreAdapter)(nil)
