package api

import (
	"github.com/festivelab/giftwhisper/internal/models"
	"github.com/festivelab/giftwhisper/internal/services"
)

type authStoreAdapter struct {
	store Store
}

func newAuthStoreAdapter(store Store) services.AuthStore {
	return &authStoreAdapter{store: store}
}

func (a *authStoreAdapter) FindOrganizerByEmail(email string) (*services.Organizer, error) {
	o := a.store.FindOrganizerByEmail(email)
	if o == nil {
		return nil, nil
	}
	return &services.Organizer{ID: o.ID, Email: o.Email, PassHash: o.PassHash, CreatedAt: o.CreatedAt}, nil
}

func (a *authStoreAdapter) AddOrganizer(o *services.Organizer) error {
	a.store.AddOrganizer(&models.Organizer{ID: o.ID, Email: o.Email, PassHash: o.PassHash, CreatedAt: o.CreatedAt})
	return nil
}

var _ services.AuthStore = (*authStoreAdapter)(nil)
