package services

import (
	"errors"
	"strings"
	"testing"
)

type stubNotifyStore struct {
	game         *Game
	participants []*Participant
	audit        []AuditEntry
}

func (s *stubNotifyStore) GetGame(id string) (*Game, error) {
	if s.game != nil && s.game.ID == id {
		copy := *s.game
		return &copy, nil
	}
	return nil, nil
}

func (s *stubNotifyStore) ListParticipants(gameID string) ([]*Participant, error) {
	return s.participants, nil
}

func (s *stubNotifyStore) AddAudit(entry AuditEntry) {
	s.audit = append(s.audit, entry)
}

type recordingMailer struct {
	sent    []string
	failFor string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	if m.failFor != "" && to == m.failFor {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, to+"|"+body)
	return nil
}

func TestSendAssignments(t *testing.T) {
	codec := NewAssignmentCodec("unit-test-secret")
	participants := testParticipants(
		Participant{ID: "p1", Name: "Ada", Email: "ada@example.com"},
		Participant{ID: "p2", Name: "Ben", Email: "ben@example.com"},
		Participant{ID: "p3", Name: "Cleo"}, // no email, skipped
	)
	token, err := codec.Encode([]Pairing{
		{GiverID: "p1", ReceiverID: "p2"},
		{GiverID: "p2", ReceiverID: "p3"},
		{GiverID: "p3", ReceiverID: "p1"},
	})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	store := &stubNotifyStore{
		game:         &Game{ID: "g1", OrganizerID: "org1", Name: "Office Party", AssignmentToken: token},
		participants: participants,
	}
	mailer := &recordingMailer{}
	svc := NewNotifyService(store, codec, mailer)

	res, err := svc.SendAssignments("org1", "g1")
	if err != nil {
		t.Fatalf("SendAssignments returned error: %v", err)
	}
	if res.Sent != 2 || res.Skipped != 1 || res.Failed != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(mailer.sent[0], "Ben") {
		t.Fatalf("Ada's mail should name Ben: %q", mailer.sent[0])
	}
	if len(store.audit) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(store.audit))
	}
}

func TestSendAssignmentsBestEffort(t *testing.T) {
	codec := NewAssignmentCodec("unit-test-secret")
	participants := testParticipants(
		Participant{ID: "p1", Name: "Ada", Email: "ada@example.com"},
		Participant{ID: "p2", Name: "Ben", Email: "ben@example.com"},
	)
	token, err := codec.Encode([]Pairing{
		{GiverID: "p1", ReceiverID: "p2"},
		{GiverID: "p2", ReceiverID: "p1"},
	})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	store := &stubNotifyStore{
		game:         &Game{ID: "g1", OrganizerID: "org1", Name: "Office Party", AssignmentToken: token},
		participants: participants,
	}
	mailer := &recordingMailer{failFor: "ada@example.com"}
	svc := NewNotifyService(store, codec, mailer)

	res, err := svc.SendAssignments("org1", "g1")
	if err != nil {
		t.Fatalf("SendAssignments returned error: %v", err)
	}
	if res.Sent != 1 || res.Failed != 1 {
		t.Fatalf("one send should fail without aborting: %+v", res)
	}
}

func TestSendAssignmentsGuards(t *testing.T) {
	codec := NewAssignmentCodec("unit-test-secret")
	store := &stubNotifyStore{game: &Game{ID: "g1", OrganizerID: "org1", Name: "Office Party"}}
	svc := NewNotifyService(store, codec, &recordingMailer{})

	if _, err := svc.SendAssignments("org1", "missing"); err == nil {
		t.Fatalf("expected not found for unknown game")
	}
	if _, err := svc.SendAssignments("org2", "g1"); err == nil {
		t.Fatalf("expected forbidden for foreign organizer")
	}
	if _, err := svc.SendAssignments("org1", "g1"); err == nil {
		t.Fatalf("expected conflict before draw")
	}
}

func TestSendAssignmentsBadTokenSkipsAll(t *testing.T) {
	codec := NewAssignmentCodec("unit-test-secret")
	store := &stubNotifyStore{
		game: &Game{ID: "g1", OrganizerID: "org1", Name: "Office Party", AssignmentToken: "garbage"},
		participants: testParticipants(
			Participant{ID: "p1", Name: "Ada", Email: "ada@example.com"},
		),
	}
	svc := NewNotifyService(store, codec, &recordingMailer{})
	res, err := svc.SendAssignments("org1", "g1")
	if err != nil {
		t.Fatalf("bad token must not abort the loop: %v", err)
	}
	if res.Sent != 0 || res.Skipped != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
}
