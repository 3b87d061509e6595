package services

import "time"

// Gender categories tracked for participants. Only male and female feed the
// balance/skew math; other is counted in totals.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

type Game struct {
	ID                 string     `json:"id"`
	OrganizerID        string     `json:"organizer_id,omitempty"`
	Name               string     `json:"name"`
	AssignmentToken    string     `json:"-"`
	ConstraintsRelaxed bool       `json:"constraints_relaxed,omitempty"`
	DrawnAt            *time.Time `json:"drawn_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type Participant struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Gender      string    `json:"gender"`
	ArrivalYear int       `json:"arrival_year"`
	CreatedAt   time.Time `json:"created_at"`
}

// Exclusion forbids a giver/receiver pairing between two participants in
// either direction, typically couples or roommates. Names are the unordered
// pair key; the reason is organizer-facing free text.
type Exclusion struct {
	ID     string `json:"id"`
	GameID string `json:"game_id"`
	NameA  string `json:"name_a"`
	NameB  string `json:"name_b"`
	Reason string `json:"reason,omitempty"`
}

type AuditEntry struct {
	Time   time.Time
	Actor  string
	Action string
	Target string
	Note   string
}
