package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/festivelab/giftwhisper/internal/middleware"
	"github.com/festivelab/giftwhisper/internal/services"
)

// Config carries the process-level knobs the router needs. TokenSecret keys
// the assignment codec; empty means the built-in development secret.
type Config struct {
	TokenSecret string
	ClueTarget  int
	Mailer      services.Mailer
}

type Router struct {
	store  Store
	auth   *services.AuthService
	games  *services.GameService
	notify *services.NotifyService
}

func NewRouter(store Store, cfg Config) *Router {
	codec := services.NewAssignmentCodec(cfg.TokenSecret)
	mailer := cfg.Mailer
	if mailer == nil {
		mailer = logMailer{}
	}
	return &Router{
		store:  store,
		auth:   services.NewAuthService(newAuthStoreAdapter(store), middleware.SignToken),
		games:  services.NewGameService(newGameStoreAdapter(store), services.NewDrawService(codec), services.NewClueService(codec, cfg.ClueTarget)),
		notify: services.NewNotifyService(newNotifyStoreAdapter(store), codec, mailer),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", rt.handleRegister) // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)       // POST
	mux.HandleFunc("/api/games", rt.handleGames)            // GET, POST
	mux.HandleFunc("/api/games/", rt.handleGameScoped)      // subresources
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		status := http.StatusInternalServerError
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorForbidden:
			status = http.StatusForbidden
		case services.ErrorNotFound:
			status = http.StatusNotFound
		case services.ErrorConflict:
			status = http.StatusConflict
		case services.ErrorUnauthorized:
			status = http.StatusUnauthorized
		}
		http.Error(w, se.Message, status)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func organizerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.OrganizerIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return id, true
}

// POST /api/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"token": res.Token, "organizer_id": res.OrganizerID})
}

// POST /api/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"token": res.Token, "organizer_id": res.OrganizerID})
}

// GET|POST /api/games
func (rt *Router) handleGames(w http.ResponseWriter, r *http.Request) {
	oid, ok := organizerID(w, r)
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		g, err := rt.games.CreateGame(oid, req.Name)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, gameView(g))
	case http.MethodGet:
		gs, err := rt.games.ListGames(oid)
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]map[string]any, 0, len(gs))
		for _, g := range gs {
			out = append(out, gameView(g))
		}
		writeJSON(w, map[string]any{"games": out})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// gameView never exposes the assignment token: the draw stays opaque to the
// organizer-facing surface.
func gameView(g *services.Game) map[string]any {
	return map[string]any{
		"id":                  g.ID,
		"name":                g.Name,
		"drawn":               g.AssignmentToken != "",
		"constraints_relaxed": g.ConstraintsRelaxed,
		"drawn_at":            g.DrawnAt,
		"created_at":          g.CreatedAt,
	}
}

// handleGameScoped dispatches /api/games/{id} and its subresources.
func (rt *Router) handleGameScoped(w http.ResponseWriter, r *http.Request) {
	oid, ok := organizerID(w, r)
	if !ok {
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/games/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	gameID := parts[0]

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			g, err := rt.games.GetGame(oid, gameID)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, gameView(g))
		case http.MethodDelete:
			if err := rt.games.DeleteGame(oid, gameID); err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, map[string]any{"ok": true})
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "participants":
		rt.handleParticipants(w, r, oid, gameID, parts[2:])
	case "exclusions":
		rt.handleExclusions(w, r, oid, gameID)
	case "draw":
		rt.handleDraw(w, r, oid, gameID)
	case "clues":
		rt.handleClues(w, r, oid, gameID)
	case "notify":
		rt.handleNotify(w, r, oid, gameID)
	default:
		http.NotFound(w, r)
	}
}

func (rt *Router) handleParticipants(w http.ResponseWriter, r *http.Request, oid, gameID string, rest []string) {
	if len(rest) == 1 && r.Method == http.MethodDelete {
		if err := rt.games.RemoveParticipant(oid, gameID, rest[0]); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Name        string `json:"name"`
			Email       string `json:"email"`
			Gender      string `json:"gender"`
			ArrivalYear int    `json:"arrival_year"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p, err := rt.games.AddParticipant(oid, gameID, services.ParticipantInput{
			Name:        req.Name,
			Email:       req.Email,
			Gender:      req.Gender,
			ArrivalYear: req.ArrivalYear,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, p)
	case http.MethodGet:
		ps, err := rt.games.ListParticipants(oid, gameID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, map[string]any{"participants": ps})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (rt *Router) handleExclusions(w http.ResponseWriter, r *http.Request, oid, gameID string) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			NameA  string `json:"name_a"`
			NameB  string `json:"name_b"`
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ex, err := rt.games.AddExclusion(oid, gameID, services.ExclusionInput{NameA: req.NameA, NameB: req.NameB, Reason: req.Reason})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, ex)
	case http.MethodGet:
		es, err := rt.games.ListExclusions(oid, gameID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, map[string]any{"exclusions": es})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// POST /api/games/{id}/draw
func (rt *Router) handleDraw(w http.ResponseWriter, r *http.Request, oid, gameID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	g, err := rt.games.RunDraw(oid, gameID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true, "constraints_relaxed": g.ConstraintsRelaxed, "drawn_at": g.DrawnAt})
}

// GET /api/games/{id}/clues
func (rt *Router) handleClues(w http.ResponseWriter, r *http.Request, oid, gameID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	clues, err := rt.games.Clues(oid, gameID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"clues": clues})
}

// POST /api/games/{id}/notify
func (rt *Router) handleNotify(w http.ResponseWriter, r *http.Request, oid, gameID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	res, err := rt.notify.SendAssignments(oid, gameID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, res)
}
