package api

import "github.com/festivelab/giftwhisper/internal/models"

type Store interface {
	AddOrganizer(o *models.Organizer)
	FindOrganizerByEmail(email string) *models.Organizer

	AddGame(g *models.Game)
	UpdateGame(g *models.Game) bool
	GetGame(id string) *models.Game
	DeleteGame(id string) bool
	ListGamesByOrganizer(organizerID string) []*models.Game

	AddParticipant(p *models.Participant)
	ListParticipants(gameID string) []*models.Participant
	DeleteParticipant(id string) bool

	AddExclusion(e *models.Exclusion)
	ListExclusions(gameID string) []*models.Exclusion

	AddAudit(e models.AuditEntry)
	ListAudit() []models.AuditEntry
}

var _ Store = (*memoryStore)(nil)
