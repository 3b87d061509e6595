package api

import (
	"log"

	"github.com/festivelab/giftwhisper/internal/services"
)

type notifyStoreAdapter struct {
	games *gameStoreAdapter
}

func newNotifyStoreAdapter(store Store) services.NotifyStore {
	return &notifyStoreAdapter{games: &gameStoreAdapter{store: store}}
}

func (a *notifyStoreAdapter) GetGame(id string) (*services.Game, error) {
	return a.games.GetGame(id)
}

func (a *notifyStoreAdapter) ListParticipants(gameID string) ([]*services.Participant, error) {
	return a.games.ListParticipants(gameID)
}

func (a *notifyStoreAdapter) AddAudit(entry services.AuditEntry) {
	a.games.AddAudit(entry)
}

var _ services.NotifyStore = (*notifyStoreAdapter)(nil)

// logMailer is the development Mailer: it logs instead of delivering. The
// deployment swaps in a real transport via Router configuration.
type logMailer struct{}

func (logMailer) Send(to, subject, body string) error {
	log.Printf("mail to=%s subject=%q", to, subject)
	return nil
}
