package services

import (
	"fmt"
	"strconv"
	"time"
)

// Mailer delivers one message. The deployment wires a real transport; tests
// and dev use a recording or logging implementation.
type Mailer interface {
	Send(to, subject, body string) error
}

type NotifyStore interface {
	GetGame(id string) (*Game, error)
	ListParticipants(gameID string) ([]*Participant, error)
	AddAudit(entry AuditEntry)
}

// NotifyResult summarizes a best-effort delivery pass.
type NotifyResult struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type NotifyService struct {
	store  NotifyStore
	codec  *AssignmentCodec
	mailer Mailer
	now    func() time.Time
}

func NewNotifyService(store NotifyStore, codec *AssignmentCodec, mailer Mailer) *NotifyService {
	return &NotifyService{
		store:  store,
		codec:  codec,
		mailer: mailer,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SendAssignments emails each participant their secret receiver. The loop is
// best-effort: a participant with no email, no resolvable assignment, or a
// failed send is counted and skipped, never aborting the rest of the run.
func (s *NotifyService) SendAssignments(organizerID, gameID string) (*NotifyResult, error) {
	g, err := s.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, NewNotFoundError("game not found")
	}
	if g.OrganizerID != organizerID {
		return nil, NewForbiddenError("forbidden")
	}
	if g.AssignmentToken == "" {
		return nil, NewConflictError("draw has not been run yet")
	}
	if s.mailer == nil {
		return nil, NewInvalidError("mailer not configured")
	}
	participants, err := s.store.ListParticipants(gameID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}

	res := &NotifyResult{}
	for _, p := range participants {
		receiverID, ok := s.codec.LookupReceiver(g.AssignmentToken, p.ID)
		if !ok {
			res.Skipped++
			continue
		}
		receiver := byID[receiverID]
		if receiver == nil || p.Email == "" {
			res.Skipped++
			continue
		}
		subject := fmt.Sprintf("Your %s gift assignment", g.Name)
		body := fmt.Sprintf("Hi %s,\n\nYou are giving a gift to %s. Keep it secret!\n", p.Name, receiver.Name)
		if err := s.mailer.Send(p.Email, subject, body); err != nil {
			res.Failed++
			continue
		}
		res.Sent++
	}
	s.store.AddAudit(AuditEntry{
		Time:   s.now(),
		Actor:  organizerID,
		Action: "notify_participants",
		Target: gameID,
		Note:   "sent=" + strconv.Itoa(res.Sent),
	})
	return res, nil
}
