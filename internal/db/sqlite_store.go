package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/festivelab/giftwhisper/internal/api"
	"github.com/festivelab/giftwhisper/internal/models"
)

// SQLiteStore is the persistent api.Store. Queries are plain database/sql
// over the mattn/go-sqlite3 driver; the schema lives in migrations/.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func NewStore(db *sql.DB) (api.Store, error) {
	return NewSQLiteStore(db)
}

func (s *SQLiteStore) logErr(prefix string, err error) {
	if err != nil {
		log.Printf("sqlite store: %s: %v", prefix, err)
	}
}

func timeToText(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func textToTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func (s *SQLiteStore) AddOrganizer(o *models.Organizer) {
	_, err := s.db.Exec(
		`INSERT INTO organizers (id, email, pass_hash, created_at) VALUES (?, ?, ?, ?)`,
		o.ID, o.Email, o.PassHash, timeToText(o.CreatedAt),
	)
	s.logErr("add organizer", err)
}

func (s *SQLiteStore) FindOrganizerByEmail(email string) *models.Organizer {
	row := s.db.QueryRow(`SELECT id, email, pass_hash, created_at FROM organizers WHERE email = ?`, email)
	var o models.Organizer
	var created string
	if err := row.Scan(&o.ID, &o.Email, &o.PassHash, &created); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("find organizer", err)
		}
		return nil
	}
	o.CreatedAt = textToTime(created)
	return &o
}

func (s *SQLiteStore) AddGame(g *models.Game) {
	_, err := s.db.Exec(
		`INSERT INTO games (id, organizer_id, name, assignment_token, constraints_relaxed, drawn_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.OrganizerID, g.Name, g.AssignmentToken, boolToInt64(g.ConstraintsRelaxed), drawnAtText(g.DrawnAt), timeToText(g.CreatedAt),
	)
	s.logErr("add game", err)
}

func drawnAtText(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: timeToText(*t), Valid: true}
}

func (s *SQLiteStore) UpdateGame(g *models.Game) bool {
	res, err := s.db.Exec(
		`UPDATE games SET name = ?, assignment_token = ?, constraints_relaxed = ?, drawn_at = ? WHERE id = ?`,
		g.Name, g.AssignmentToken, boolToInt64(g.ConstraintsRelaxed), drawnAtText(g.DrawnAt), g.ID,
	)
	if err != nil {
		s.logErr("update game", err)
		return false
	}
	n, err := res.RowsAffected()
	if err != nil {
		s.logErr("update game rows", err)
		return false
	}
	return n > 0
}

func (s *SQLiteStore) scanGame(row interface{ Scan(...any) error }) *models.Game {
	var g models.Game
	var relaxed int64
	var drawn sql.NullString
	var created string
	if err := row.Scan(&g.ID, &g.OrganizerID, &g.Name, &g.AssignmentToken, &relaxed, &drawn, &created); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logErr("scan game", err)
		}
		return nil
	}
	g.ConstraintsRelaxed = relaxed != 0
	if drawn.Valid {
		t := textToTime(drawn.String)
		g.DrawnAt = &t
	}
	g.CreatedAt = textToTime(created)
	return &g
}

const gameColumns = `id, organizer_id, name, assignment_token, constraints_relaxed, drawn_at, created_at`

func (s *SQLiteStore) GetGame(id string) *models.Game {
	return s.scanGame(s.db.QueryRow(`SELECT `+gameColumns+` FROM games WHERE id = ?`, id))
}

func (s *SQLiteStore) DeleteGame(id string) bool {
	res, err := s.db.Exec(`DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		s.logErr("delete game", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) ListGamesByOrganizer(organizerID string) []*models.Game {
	rows, err := s.db.Query(`SELECT `+gameColumns+` FROM games WHERE organizer_id = ? ORDER BY id`, organizerID)
	if err != nil {
		s.logErr("list games", err)
		return nil
	}
	defer rows.Close()
	out := []*models.Game{}
	for rows.Next() {
		if g := s.scanGame(rows); g != nil {
			out = append(out, g)
		}
	}
	s.logErr("list games rows", rows.Err())
	return out
}

func (s *SQLiteStore) AddParticipant(p *models.Participant) {
	_, err := s.db.Exec(
		`INSERT INTO participants (id, game_id, name, email, gender, arrival_year, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.GameID, p.Name, p.Email, p.Gender, p.ArrivalYear, timeToText(p.CreatedAt),
	)
	s.logErr("add participant", err)
}

func (s *SQLiteStore) ListParticipants(gameID string) []*models.Participant {
	rows, err := s.db.Query(
		`SELECT id, game_id, name, email, gender, arrival_year, created_at FROM participants WHERE game_id = ? ORDER BY id`,
		gameID,
	)
	if err != nil {
		s.logErr("list participants", err)
		return nil
	}
	defer rows.Close()
	out := []*models.Participant{}
	for rows.Next() {
		var p models.Participant
		var created string
		if err := rows.Scan(&p.ID, &p.GameID, &p.Name, &p.Email, &p.Gender, &p.ArrivalYear, &created); err != nil {
			s.logErr("scan participant", err)
			continue
		}
		p.CreatedAt = textToTime(created)
		out = append(out, &p)
	}
	s.logErr("list participants rows", rows.Err())
	return out
}

func (s *SQLiteStore) DeleteParticipant(id string) bool {
	res, err := s.db.Exec(`DELETE FROM participants WHERE id = ?`, id)
	if err != nil {
		s.logErr("delete participant", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n > 0
}

func (s *SQLiteStore) AddExclusion(e *models.Exclusion) {
	_, err := s.db.Exec(
		`INSERT INTO exclusions (id, game_id, name_a, name_b, reason) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.GameID, e.NameA, e.NameB, e.Reason,
	)
	s.logErr("add exclusion", err)
}

func (s *SQLiteStore) ListExclusions(gameID string) []*models.Exclusion {
	rows, err := s.db.Query(
		`SELECT id, game_id, name_a, name_b, reason FROM exclusions WHERE game_id = ? ORDER BY id`,
		gameID,
	)
	if err != nil {
		s.logErr("list exclusions", err)
		return nil
	}
	defer rows.Close()
	out := []*models.Exclusion{}
	for rows.Next() {
		var e models.Exclusion
		if err := rows.Scan(&e.ID, &e.GameID, &e.NameA, &e.NameB, &e.Reason); err != nil {
			s.logErr("scan exclusion", err)
			continue
		}
		out = append(out, &e)
	}
	s.logErr("list exclusions rows", rows.Err())
	return out
}

func (s *SQLiteStore) AddAudit(e models.AuditEntry) {
	_, err := s.db.Exec(
		`INSERT INTO audit_log (time, actor, action, target, note) VALUES (?, ?, ?, ?, ?)`,
		timeToText(e.Time), e.Actor, e.Action, e.Target, e.Note,
	)
	s.logErr("add audit", err)
}

func (s *SQLiteStore) ListAudit() []models.AuditEntry {
	rows, err := s.db.Query(`SELECT time, actor, action, target, note FROM audit_log ORDER BY time`)
	if err != nil {
		s.logErr("list audit", err)
		return nil
	}
	defer rows.Close()
	out := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		var ts string
		if err := rows.Scan(&ts, &e.Actor, &e.Action, &e.Target, &e.Note); err != nil {
			s.logErr("scan audit", err)
			continue
		}
		e.Time = textToTime(ts)
		out = append(out, e)
	}
	s.logErr("list audit rows", rows.Err())
	return out
}

var _ api.Store = (*SQLiteStore)(nil)
