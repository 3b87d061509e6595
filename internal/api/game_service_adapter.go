package api

import (
	"github.com/festivelab/giftwhisper/internal/models"
	"github.com/festivelab/giftwhisper/internal/services"
)

type gameStoreAdapter struct {
	store Store
}

func newGameStoreAdapter(store Store) services.GameStore {
	return &gameStoreAdapter{store: store}
}

func toServiceGame(g *models.Game) *services.Game {
	if g == nil {
		return nil
	}
	return &services.Game{
		ID:                 g.ID,
		OrganizerID:        g.OrganizerID,
		Name:               g.Name,
		AssignmentToken:    g.AssignmentToken,
		ConstraintsRelaxed: g.ConstraintsRelaxed,
		DrawnAt:            g.DrawnAt,
		CreatedAt:          g.CreatedAt,
	}
}

func toModelGame(g *services.Game) *models.Game {
	return &models.Game{
		ID:                 g.ID,
		OrganizerID:        g.OrganizerID,
		Name:               g.Name,
		AssignmentToken:    g.AssignmentToken,
		ConstraintsRelaxed: g.ConstraintsRelaxed,
		DrawnAt:            g.DrawnAt,
		CreatedAt:          g.CreatedAt,
	}
}

func toServiceParticipant(p *models.Participant) *services.Participant {
	return &services.Participant{
		ID:          p.ID,
		GameID:      p.GameID,
		Name:        p.Name,
		Email:       p.Email,
		Gender:      p.Gender,
		ArrivalYear: p.ArrivalYear,
		CreatedAt:   p.CreatedAt,
	}
}

func toServiceExclusion(e *models.Exclusion) *services.Exclusion {
	return &services.Exclusion{ID: e.ID, GameID: e.GameID, NameA: e.NameA, NameB: e.NameB, Reason: e.Reason}
}

func (a *gameStoreAdapter) InsertGame(g *services.Game) error {
	a.store.AddGame(toModelGame(g))
	return nil
}

func (a *gameStoreAdapter) GetGame(id string) (*services.Game, error) {
	return toServiceGame(a.store.GetGame(id)), nil
}

func (a *gameStoreAdapter) ListGamesByOrganizer(organizerID string) ([]*services.Game, error) {
	gs := a.store.ListGamesByOrganizer(organizerID)
	out := make([]*services.Game, 0, len(gs))
	for _, g := range gs {
		out = append(out, toServiceGame(g))
	}
	return out, nil
}

func (a *gameStoreAdapter) UpdateGame(g *services.Game) error {
	if !a.store.UpdateGame(toModelGame(g)) {
		return services.NewNotFoundError("game not found")
	}
	return nil
}

func (a *gameStoreAdapter) DeleteGame(id string) error {
	if !a.store.DeleteGame(id) {
		return services.NewNotFoundError("game not found")
	}
	return nil
}

func (a *gameStoreAdapter) InsertParticipant(p *services.Participant) error {
	a.store.AddParticipant(&models.Participant{
		ID:          p.ID,
		GameID:      p.GameID,
		Name:        p.Name,
		Email:       p.Email,
		Gender:      p.Gender,
		ArrivalYear: p.ArrivalYear,
		CreatedAt:   p.CreatedAt,
	})
	return nil
}

func (a *gameStoreAdapter) ListParticipants(gameID string) ([]*services.Participant, error) {
	ps := a.store.ListParticipants(gameID)
	out := make([]*services.Participant, 0, len(ps))
	for _, p := range ps {
		out = append(out, toServiceParticipant(p))
	}
	return out, nil
}

func (a *gameStoreAdapter) DeleteParticipant(id string) (bool, error) {
	return a.store.DeleteParticipant(id), nil
}

func (a *gameStoreAdapter) InsertExclusion(e *services.Exclusion) error {
	a.store.AddExclusion(&models.Exclusion{ID: e.ID, GameID: e.GameID, NameA: e.NameA, NameB: e.NameB, Reason: e.Reason})
	return nil
}

func (a *gameStoreAdapter) ListExclusions(gameID string) ([]*services.Exclusion, error) {
	es := a.store.ListExclusions(gameID)
	out := make([]*services.Exclusion, 0, len(es))
	for _, e := range es {
		out = append(out, toServiceExclusion(e))
	}
	return out, nil
}

func (a *gameStoreAdapter) AddAudit(entry services.AuditEntry) {
	a.store.AddAudit(models.AuditEntry{Time: entry.Time, Actor: entry.Actor, Action: entry.Action, Target: entry.Target, Note: entry.Note})
}

var _ services.GameStore = (*gameStoreAdapter)(nil)
