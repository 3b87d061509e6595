package services

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnauthorized ErrorCode = "unauthorized"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error   { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error  { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

type GameStore interface {
	InsertGame(g *Game) error
	GetGame(id string) (*Game, error)
	ListGamesByOrganizer(organizerID string) ([]*Game, error)
	UpdateGame(g *Game) error
	DeleteGame(id string) error
	InsertParticipant(p *Participant) error
	ListParticipants(gameID string) ([]*Participant, error)
	DeleteParticipant(id string) (bool, error)
	InsertExclusion(e *Exclusion) error
	ListExclusions(gameID string) ([]*Exclusion, error)
	AddAudit(entry AuditEntry)
}

// GameService owns game/participant/exclusion lifecycle and orchestrates the
// draw and clue engines. Only the opaque assignment token is ever persisted;
// the plaintext pairing list never leaves a draw call.
type GameService struct {
	store GameStore
	draw  *DrawService
	clues *ClueService
	now   func() time.Time
	idGen func() string
}

func NewGameService(store GameStore, draw *DrawService, clues *ClueService) *GameService {
	return &GameService{
		store: store,
		draw:  draw,
		clues: clues,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func() string { return shortID(8) },
	}
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

func (s *GameService) CreateGame(organizerID, name string) (*Game, error) {
	if organizerID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewInvalidError("name required")
	}
	g := &Game{ID: s.idGen(), OrganizerID: organizerID, Name: name, CreatedAt: s.now()}
	if err := s.store.InsertGame(g); err != nil {
		return nil, err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: organizerID, Action: "create_game", Target: g.ID})
	return g, nil
}

func (s *GameService) ListGames(organizerID string) ([]*Game, error) {
	if organizerID == "" {
		return nil, NewForbiddenError("unauthorized")
	}
	return s.store.ListGamesByOrganizer(organizerID)
}

// ownedGame loads a game and checks organizer scope.
func (s *GameService) ownedGame(organizerID, gameID string) (*Game, error) {
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
	return g, nil
}

func (s *GameService) GetGame(organizerID, gameID string) (*Game, error) {
	return s.ownedGame(organizerID, gameID)
}

func (s *GameService) DeleteGame(organizerID, gameID string) error {
	if _, err := s.ownedGame(organizerID, gameID); err != nil {
		return err
	}
	if err := s.store.DeleteGame(gameID); err != nil {
		return err
	}
	s.store.AddAudit(AuditEntry{Time: s.now(), Actor: organizerID, Action: "delete_game", Target: gameID})
	return nil
}

type ParticipantInput struct {
	Name        string
	Email       string
	Gender      string
	ArrivalYear int
}

func (s *GameService) AddParticipant(organizerID, gameID string, in ParticipantInput) (*Participant, error) {
	if _, err := s.ownedGame(organizerID, gameID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, NewInvalidError("name required")
	}
	gender := strings.ToLower(strings.TrimSpace(in.Gender))
	switch gender {
	case GenderMale, GenderFemale, GenderOther:
	case "":
		gender = GenderOther
	default:
		return nil, NewInvalidError("gender must be male, female or other")
	}
	if in.ArrivalYear <= 0 {
		return nil, NewInvalidError("arrival_year required")
	}
	existing, err := s.store.ListParticipants(gameID)
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if strings.EqualFold(p.Name, name) {
			return nil, NewConflictError("participant name already registered")
		}
	}
	p := &Participant{
		ID:          s.idGen(),
		GameID:      gameID,
		Name:        name,
		Email:       strings.TrimSpace(in.Email),
		Gender:      gender,
		ArrivalYear: in.ArrivalYear,
		CreatedAt:   s.now(),
	}
	if err := s.store.InsertParticipant(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *GameService) ListParticipants(organizerID, gameID string) ([]*Participant, error) {
	if _, err := s.ownedGame(organizerID, gameID); err != nil {
		return nil, err
	}
	return s.store.ListParticipants(gameID)
}

func (s *GameService) RemoveParticipant(organizerID, gameID, participantID string) error {
	if _, err := s.ownedGame(organizerID, gameID); err != nil {
		return err
	}
	ok, err := s.store.DeleteParticipant(participantID)
	if err != nil {
		return err
	}
	if !ok {
		return NewNotFoundError("participant not found")
	}
	return nil
}

type ExclusionInput struct {
	NameA  string
	NameB  string
	Reason string
}

func (s *GameService) AddExclusion(organizerID, gameID string, in ExclusionInput) (*Exclusion, error) {
	if _, err := s.ownedGame(organizerID, gameID); err != nil {
		return nil, err
	}
	a, b := strings.TrimSpace(in.NameA), strings.TrimSpace(in.NameB)
	if a == "" || b == "" {
		return nil, NewInvalidError("two participant names required")
	}
	if strings.EqualFold(a, b) {
		return nil, NewInvalidError("cannot exclude a participant from themself")
	}
	participants, err := s.store.ListParticipants(gameID)
	if err != nil {
		return nil, err
	}
	byName := map[string]bool{}
	for _, p := range participants {
		byName[strings.ToLower(p.Name)] = true
	}
	if !byName[strings.ToLower(a)] || !byName[strings.ToLower(b)] {
		return nil, NewInvalidError("both names must belong to registered participants")
	}
	ex := &Exclusion{ID: s.idGen(), GameID: gameID, NameA: a, NameB: b, Reason: strings.TrimSpace(in.Reason)}
	if err := s.store.InsertExclusion(ex); err != nil {
		return nil, err
	}
	return ex, nil
}

func (s *GameService) ListExclusions(organizerID, gameID string) ([]*Exclusion, error) {
	if _, err := s.ownedGame(organizerID, gameID); err != nil {
		return nil, err
	}
	return s.store.ListExclusions(gameID)
}

// RunDraw executes the assignment engine for a game and persists the opaque
// token plus the relaxation flag. Re-running replaces the previous draw.
func (s *GameService) RunDraw(organizerID, gameID string) (*Game, error) {
	g, err := s.ownedGame(organizerID, gameID)
	if err != nil {
		return nil, err
	}
	participants, err := s.store.ListParticipants(gameID)
	if err != nil {
		return nil, err
	}
	exclusions, err := s.store.ListExclusions(gameID)
	if err != nil {
		return nil, err
	}
	result, err := s.draw.Draw(participants, exclusions)
	if err != nil {
		if errors.Is(err, ErrInsufficientParticipants) {
			return nil, NewInvalidError(err.Error())
		}
		return nil, err
	}
	now := s.now()
	g.AssignmentToken = result.Token
	g.ConstraintsRelaxed = result.ConstraintsRelaxed
	g.DrawnAt = &now
	if err := s.store.UpdateGame(g); err != nil {
		return nil, err
	}
	s.store.AddAudit(AuditEntry{
		Time:   now,
		Actor:  organizerID,
		Action: "run_draw",
		Target: gameID,
		Note:   "relaxed=" + strconv.FormatBool(result.ConstraintsRelaxed),
	})
	return g, nil
}

// Clues generates party clues for a drawn game. The decoded assignment never
// leaves the clue engine; only derived statements are returned.
func (s *GameService) Clues(organizerID, gameID string) ([]Clue, error) {
	g, err := s.ownedGame(organizerID, gameID)
	if err != nil {
		return nil, err
	}
	if g.AssignmentToken == "" {
		return nil, NewConflictError("draw has not been run yet")
	}
	participants, err := s.store.ListParticipants(gameID)
	if err != nil {
		return nil, err
	}
	exclusions, err := s.store.ListExclusions(gameID)
	if err != nil {
		return nil, err
	}
	return s.clues.GenerateClues(g.AssignmentToken, participants, exclusions)
}
