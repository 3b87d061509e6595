package services

import (
	"errors"
	"math/rand"
	"time"
)

// maxDrawAttempts bounds the rejection-sampling loop before the exclusion
// constraints are dropped and a plain derangement is accepted.
const maxDrawAttempts = 100

// ErrInsufficientParticipants is returned when a draw is requested for a
// group too small to exchange gifts.
var ErrInsufficientParticipants = errors.New("at least 2 participants required")

// DrawResult is the outcome of one draw. ConstraintsRelaxed reports that the
// search exhausted its retry budget and the exclusion set was abandoned for
// the final pass; callers should surface that to the organizer.
type DrawResult struct {
	Pairings           []Pairing
	Token              string
	ConstraintsRelaxed bool
}

type DrawService struct {
	codec *AssignmentCodec
	rng   *rand.Rand
}

func NewDrawService(codec *AssignmentCodec) *DrawService {
	return &DrawService{
		codec: codec,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand replaces the randomness source. Tests needing determinism inject a
// seeded source here.
func (s *DrawService) WithRand(rng *rand.Rand) {
	s.rng = rng
}

// Draw produces a complete giver/receiver matching: nobody draws themself,
// each participant gives and receives exactly once, and no pairing crosses an
// exclusion in either direction. Each attempt shuffles a receiver pool and
// assigns givers greedily; a giver left with no valid receiver fails the
// whole attempt. After maxDrawAttempts failures the exclusions are dropped
// and a rotation over a shuffled order is accepted, so the call always
// terminates with a valid derangement. Exclusions are therefore best-effort
// under pathological constraint sets, not a hard guarantee.
func (s *DrawService) Draw(participants []*Participant, exclusions []*Exclusion) (*DrawResult, error) {
	if len(participants) < 2 {
		return nil, ErrInsufficientParticipants
	}
	var pairings []Pairing
	relaxed := false
	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		if ps, ok := s.attemptDraw(participants, exclusions); ok {
			pairings = ps
			break
		}
	}
	if pairings == nil {
		pairings = s.rotationDraw(participants)
		relaxed = true
	}
	token, err := s.codec.Encode(pairings)
	if err != nil {
		return nil, err
	}
	return &DrawResult{Pairings: pairings, Token: token, ConstraintsRelaxed: relaxed}, nil
}

func (s *DrawService) attemptDraw(participants []*Participant, exclusions []*Exclusion) ([]Pairing, bool) {
	pool := make([]*Participant, len(participants))
	copy(pool, participants)
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	out := make([]Pairing, 0, len(participants))
	for _, giver := range participants {
		picked := -1
		for i, receiver := range pool {
			if receiver.ID == giver.ID {
				continue
			}
			if pairExcluded(giver.Name, receiver.Name, exclusions) {
				continue
			}
			picked = i
			break
		}
		if picked < 0 {
			return nil, false
		}
		out = append(out, Pairing{GiverID: giver.ID, ReceiverID: pool[picked].ID})
		pool = append(pool[:picked], pool[picked+1:]...)
	}
	return out, true
}

// rotationDraw assigns every participant to the next one in a shuffled order.
// A single cycle has no fixed points, so the result is a valid derangement
// for any group of 2 or more regardless of the exclusion set.
func (s *DrawService) rotationDraw(participants []*Participant) []Pairing {
	order := make([]*Participant, len(participants))
	copy(order, participants)
	s.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	out := make([]Pairing, 0, len(order))
	for i, giver := range order {
		receiver := order[(i+1)%len(order)]
		out = append(out, Pairing{GiverID: giver.ID, ReceiverID: receiver.ID})
	}
	return out
}

func pairExcluded(giver, receiver string, exclusions []*Exclusion) bool {
	for _, ex := range exclusions {
		if (ex.NameA == giver && ex.NameB == receiver) || (ex.NameA == receiver && ex.NameB == giver) {
			return true
		}
	}
	return false
}

// IsValidDerangement reports whether pairings is a complete self-avoiding
// matching over participants: the giver set and receiver set each cover every
// participant id exactly once and no pairing is a self-loop.
func IsValidDerangement(pairings []Pairing, participants []*Participant) bool {
	ids := make(map[string]bool, len(participants))
	for _, p := range participants {
		ids[p.ID] = true
	}
	if len(pairings) != len(ids) || len(ids) != len(participants) {
		return false
	}
	givers := make(map[string]bool, len(ids))
	receivers := make(map[string]bool, len(ids))
	for _, pr := range pairings {
		if pr.GiverID == pr.ReceiverID {
			return false
		}
		if !ids[pr.GiverID] || !ids[pr.ReceiverID] {
			return false
		}
		if givers[pr.GiverID] || receivers[pr.ReceiverID] {
			return false
		}
		givers[pr.GiverID] = true
		receivers[pr.ReceiverID] = true
	}
	return len(givers) == len(ids) && len(receivers) == len(ids)
}
