package models

import "time"

// Organizer is the account that sets up a gift exchange. Participants do not
// have accounts; they only receive email.
type Organizer struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	PassHash  []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Game is one gift-exchange round. AssignmentToken holds the encrypted draw;
// it is stored opaque and never decrypted for the organizer-facing surface.
type Game struct {
	ID                 string     `json:"id"`
	OrganizerID        string     `json:"organizer_id"`
	Name               string     `json:"name"`
	AssignmentToken    string     `json:"-"`
	ConstraintsRelaxed bool       `json:"constraints_relaxed,omitempty"`
	DrawnAt            *time.Time `json:"drawn_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// Participant is one person in a game. Gender is one of male/female/other;
// ArrivalYear is the year they joined the group the exchange is run for.
type Participant struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Gender      string    `json:"gender"`
	ArrivalYear int       `json:"arrival_year"`
	CreatedAt   time.Time `json:"created_at"`
}

// Exclusion is an unordered pair of participant names that must not be
// matched giver/receiver in either direction.
type Exclusion struct {
	ID     string `json:"id"`
	GameID string `json:"game_id"`
	NameA  string `json:"name_a"`
	NameB  string `json:"name_b"`
	Reason string `json:"reason,omitempty"`
}

// AuditEntry records an organizer-visible mutation.
type AuditEntry struct {
	Time   time.Time `json:"time"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Target string    `json:"target"`
	Note   string    `json:"note,omitempty"`
}
