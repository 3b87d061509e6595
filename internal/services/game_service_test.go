package services

import (
	"math/rand"
	"strconv"
	"testing"
	"time"
)

type stubGameStore struct {
	games        map[string]*Game
	participants map[string][]*Participant
	exclusions   map[string][]*Exclusion
	audit        []AuditEntry
}

func newStubGameStore() *stubGameStore {
	return &stubGameStore{
		games:        map[string]*Game{},
		participants: map[string][]*Participant{},
		exclusions:   map[string][]*Exclusion{},
	}
}

func (s *stubGameStore) InsertGame(g *Game) error {
	copy := *g
	s.games[g.ID] = &copy
	return nil
}

func (s *stubGameStore) GetGame(id string) (*Game, error) {
	if g, ok := s.games[id]; ok {
		copy := *g
		return &copy, nil
	}
	return nil, nil
}

func (s *stubGameStore) ListGamesByOrganizer(organizerID string) ([]*Game, error) {
	var out []*Game
	for _, g := range s.games {
		if g.OrganizerID == organizerID {
			copy := *g
			out = append(out, &copy)
		}
	}
	return out, nil
}

func (s *stubGameStore) UpdateGame(g *Game) error {
	copy := *g
	s.games[g.ID] = &copy
	return nil
}

func (s *stubGameStore) DeleteGame(id string) error {
	delete(s.games, id)
	return nil
}

func (s *stubGameStore) InsertParticipant(p *Participant) error {
	copy := *p
	s.participants[p.GameID] = append(s.participants[p.GameID], &copy)
	return nil
}

func (s *stubGameStore) ListParticipants(gameID string) ([]*Participant, error) {
	return s.participants[gameID], nil
}

func (s *stubGameStore) DeleteParticipant(id string) (bool, error) {
	for gid, ps := range s.participants {
		for i, p := range ps {
			if p.ID == id {
				s.participants[gid] = append(ps[:i], ps[i+1:]...)
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *stubGameStore) InsertExclusion(e *Exclusion) error {
	copy := *e
	s.exclusions[e.GameID] = append(s.exclusions[e.GameID], &copy)
	return nil
}

func (s *stubGameStore) ListExclusions(gameID string) ([]*Exclusion, error) {
	return s.exclusions[gameID], nil
}

func (s *stubGameStore) AddAudit(entry AuditEntry) {
	s.audit = append(s.audit, entry)
}

func newTestGameService(store *stubGameStore) *GameService {
	codec := NewAssignmentCodec("unit-test-secret")
	draw := NewDrawService(codec)
	draw.WithRand(rand.New(rand.NewSource(21)))
	clues := NewClueService(codec, DefaultClueTarget)
	clues.WithRand(rand.New(rand.NewSource(22)))
	svc := NewGameService(store, draw, clues)
	svc.now = func() time.Time { return time.Unix(0, 0).UTC() }
	n := 0
	svc.idGen = func() string { n++; return "id" + strconv.Itoa(n) }
	return svc
}

func TestGameServiceCreateAndValidate(t *testing.T) {
	store := newStubGameStore()
	svc := newTestGameService(store)

	if _, err := svc.CreateGame("", "Office Party"); err == nil {
		t.Fatalf("expected error for missing organizer")
	}
	if _, err := svc.CreateGame("org1", "   "); err == nil {
		t.Fatalf("expected error for blank name")
	}
	g, err := svc.CreateGame("org1", "Office Party")
	if err != nil {
		t.Fatalf("CreateGame returned error: %v", err)
	}
	if g.ID == "" || g.OrganizerID != "org1" {
		t.Fatalf("unexpected game %+v", g)
	}
	if _, err := svc.GetGame("org2", g.ID); err == nil {
		t.Fatalf("expected forbidden for foreign organizer")
	}
}

func TestGameServiceParticipantsAndExclusions(t *testing.T) {
	store := newStubGameStore()
	svc := newTestGameService(store)
	g, err := svc.CreateGame("org1", "Office Party")
	if err != nil {
		t.Fatalf("CreateGame returned error: %v", err)
	}

	if _, err := svc.AddParticipant("org1", g.ID, ParticipantInput{Name: "Ada", Gender: "female"}); err == nil {
		t.Fatalf("expected error for missing arrival year")
	}
	if _, err := svc.AddParticipant("org1", g.ID, ParticipantInput{Name: "Ada", Gender: "robot", ArrivalYear: 2020}); err == nil {
		t.Fatalf("expected error for unknown gender")
	}
	p, err := svc.AddParticipant("org1", g.ID, ParticipantInput{Name: "Ada", Gender: "Female", ArrivalYear: 2020})
	if err != nil {
		t.Fatalf("AddParticipant returned error: %v", err)
	}
	if p.Gender != GenderFemale {
		t.Fatalf("gender not normalized: %q", p.Gender)
	}
	if _, err := svc.AddParticipant("org1", g.ID, ParticipantInput{Name: "ada", Gender: "female", ArrivalYear: 2021}); err == nil {
		t.Fatalf("expected conflict for duplicate name")
	}
	if _, err := svc.AddParticipant("org1", g.ID, ParticipantInput{Name: "Ben", ArrivalYear: 2019}); err != nil {
		t.Fatalf("blank gender should default to other: %v", err)
	}

	if _, err := svc.AddExclusion("org1", g.ID, ExclusionInput{NameA: "Ada", NameB: "Ghost"}); err == nil {
		t.Fatalf("expected error for unregistered name")
	}
	if _, err := svc.AddExclusion("org1", g.ID, ExclusionInput{NameA: "Ada", NameB: "ada"}); err == nil {
		t.Fatalf("expected error for self exclusion")
	}
	if _, err := svc.AddExclusion("org1", g.ID, ExclusionInput{NameA: "Ada", NameB: "Ben", Reason: "couple"}); err != nil {
		t.Fatalf("AddExclusion returned error: %v", err)
	}
}

func TestGameServiceDrawAndClues(t *testing.T) {
	store := newStubGameStore()
	svc := newTestGameService(store)
	g, err := svc.CreateGame("org1", "Office Party")
	if err != nil {
		t.Fatalf("CreateGame returned error: %v", err)
	}

	if _, err := svc.Clues("org1", g.ID); err == nil {
		t.Fatalf("expected conflict before draw")
	}
	if _, err := svc.RunDraw("org1", g.ID); err == nil {
		t.Fatalf("expected error drawing with no participants")
	}

	names := []string{"Ada", "Ben", "Cleo", "Dev", "Elin", "Finn"}
	genders := []string{GenderFemale, GenderMale, GenderFemale, GenderMale, GenderFemale, GenderMale}
	for i, name := range names {
		if _, err := svc.AddParticipant("org1", g.ID, ParticipantInput{Name: name, Gender: genders[i], ArrivalYear: 2014 + i}); err != nil {
			t.Fatalf("AddParticipant(%s) returned error: %v", name, err)
		}
	}

	drawn, err := svc.RunDraw("org1", g.ID)
	if err != nil {
		t.Fatalf("RunDraw returned error: %v", err)
	}
	if drawn.AssignmentToken == "" || drawn.DrawnAt == nil {
		t.Fatalf("draw not persisted: %+v", drawn)
	}
	if drawn.ConstraintsRelaxed {
		t.Fatalf("unexpected relaxation")
	}
	stored, _ := store.GetGame(g.ID)
	if stored.AssignmentToken == "" {
		t.Fatalf("token missing from store")
	}

	clues, err := svc.Clues("org1", g.ID)
	if err != nil {
		t.Fatalf("Clues returned error: %v", err)
	}
	if len(clues) == 0 || len(clues) > DefaultClueTarget {
		t.Fatalf("expected 1..%d clues, got %d", DefaultClueTarget, len(clues))
	}
	if _, err := svc.Clues("org2", g.ID); err == nil {
		t.Fatalf("expected forbidden clues for foreign organizer")
	}
}
