package api

import (
	"sort"
	"strings"
	"sync"

	"github.com/festivelab/giftwhisper/internal/models"
)

// memoryStore is the in-process reference implementation of Store. The
// SQLite store in internal/db implements the same interface for persistence.
type memoryStore struct {
	mu           sync.RWMutex
	organizers   map[string]*models.Organizer // keyed by lowercase email
	games        map[string]*models.Game
	participants map[string]*models.Participant
	byGame       map[string][]*models.Participant
	exclusions   map[string][]*models.Exclusion
	audit        []models.AuditEntry
}

func NewMemoryStore() Store {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		organizers:   map[string]*models.Organizer{},
		games:        map[string]*models.Game{},
		participants: map[string]*models.Participant{},
		byGame:       map[string][]*models.Participant{},
		exclusions:   map[string][]*models.Exclusion{},
	}
}

func (s *memoryStore) AddOrganizer(o *models.Organizer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizers[strings.ToLower(o.Email)] = o
}

func (s *memoryStore) FindOrganizerByEmail(email string) *models.Organizer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.organizers[strings.ToLower(email)]
}

func (s *memoryStore) AddGame(g *models.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = g
}

func (s *memoryStore) UpdateGame(g *models.Game) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; !ok {
		return false
	}
	s.games[g.ID] = g
	return true
}

func (s *memoryStore) GetGame(id string) *models.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games[id]
}

func (s *memoryStore) DeleteGame(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return false
	}
	delete(s.games, id)
	for _, p := range s.byGame[id] {
		delete(s.participants, p.ID)
	}
	delete(s.byGame, id)
	delete(s.exclusions, id)
	return true
}

func (s *memoryStore) ListGamesByOrganizer(organizerID string) []*models.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*models.Game{}
	for _, g := range s.games {
		if g.OrganizerID == organizerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memoryStore) AddParticipant(p *models.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[p.ID] = p
	s.byGame[p.GameID] = append(s.byGame[p.GameID], p)
	// keep stable order by id
	sort.Slice(s.byGame[p.GameID], func(i, j int) bool { return s.byGame[p.GameID][i].ID < s.byGame[p.GameID][j].ID })
}

func (s *memoryStore) ListParticipants(gameID string) []*models.Participant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Participant(nil), s.byGame[gameID]...)
}

func (s *memoryStore) DeleteParticipant(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.participants[id]
	if !ok {
		return false
	}
	delete(s.participants, id)
	list := s.byGame[p.GameID]
	for i, q := range list {
		if q.ID == id {
			s.byGame[p.GameID] = append(list[:i], list[i+1:]...)
			break
		}
	}
	return true
}

func (s *memoryStore) AddExclusion(e *models.Exclusion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exclusions[e.GameID] = append(s.exclusions[e.GameID], e)
}

func (s *memoryStore) ListExclusions(gameID string) []*models.Exclusion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*models.Exclusion(nil), s.exclusions[gameID]...)
}

func (s *memoryStore) AddAudit(e models.AuditEntry) {
	s.mu.Lock()
	s.audit = append(s.audit, e)
	s.mu.Unlock()
}

func (s *memoryStore) ListAudit() []models.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}
