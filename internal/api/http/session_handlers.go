package http

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edustack/examsim/internal/audit"
	auth "github.com/edustack/examsim/internal/auth/middleware"
	"github.com/edustack/examsim/internal/exam"
	"github.com/edustack/examsim/internal/session"
	"github.com/edustack/examsim/internal/supply"
)

// DefinitionFetcher is the question-supply boundary as the handlers see it.
type DefinitionFetcher interface {
	FetchSimulator(ctx context.Context, id string) (exam.Definition, error)
}

// Env bundles what the session handlers need.
type Env struct {
	Sessions *session.Manager
	Supply   DefinitionFetcher
	Store    *exam.ResultStore
	Audit    *audit.Log
	WarnAt   int
	NewRand  func() *rand.Rand // tests inject a seeded source
}

func (e Env) rng() *rand.Rand {
	if e.NewRand != nil {
		return e.NewRand()
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func (e Env) warnAt() int {
	if e.WarnAt > 0 {
		return e.WarnAt
	}
	return exam.DefaultWarnAt
}

// POST /sessions  { "simulator_id": "..." }
func CreateSessionHandler(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SimulatorID string `json:"simulator_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.SimulatorID == "" {
			http.Error(w, "simulator_id required", 400)
			return
		}
		def, err := env.Supply.FetchSimulator(r.Context(), req.SimulatorID)
		if errors.Is(err, supply.ErrUnavailable) {
			// never start an empty exam in place of a failed load
			http.Error(w, "could not load simulator", http.StatusBadGateway)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}

		// a new attempt invalidates whatever the last one left behind
		if err := env.Store.ClearSession(r.Context(), def.ID); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}

		id := auth.IdentityFromContext(r.Context())
		s, err := exam.NewSession(def, exam.Taker{Name: id.Name, Email: id.Email}, env.rng(), env.Store, exam.WithWarnAt(env.warnAt()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		env.Sessions.Add(s)
		_ = env.Audit.Append(r.Context(), audit.EventSessionStarted, s.ID(), map[string]string{
			"exam_id": def.ID, "taker": id.Sub,
		})
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

// GET /sessions/{sessionID}
func GetSessionHandler(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := env.Sessions.Get(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "session not found", 404)
			return
		}
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

// POST /sessions/{sessionID}/answers  { "question_id": "...", "option_id": "..." }
func SelectAnswerHandler(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := env.Sessions.Get(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "session not found", 404)
			return
		}
		var req struct {
			QuestionID string `json:"question_id"`
			OptionID   string `json:"option_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		switch err := s.SelectAnswer(req.QuestionID, req.OptionID); {
		case errors.Is(err, exam.ErrAttemptFinished):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case err != nil:
			http.Error(w, err.Error(), 400)
			return
		}
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

// DELETE /sessions/{sessionID}/answers/{questionID}
func ClearAnswerHandler(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := env.Sessions.Get(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "session not found", 404)
			return
		}
		switch err := s.ClearAnswer(chi.URLParam(r, "questionID")); {
		case errors.Is(err, exam.ErrAttemptFinished):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case err != nil:
			http.Error(w, err.Error(), 400)
			return
		}
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

// POST /sessions/{sessionID}/navigate  { "target": 3 } or { "op": "next"|"back" }
// An out-of-policy move is not an error; the response simply carries the
// index that is still current.
func NavigateHandler(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := env.Sessions.Get(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "session not found", 404)
			return
		}
		var req struct {
			Target *int   `json:"target"`
			Op     string `json:"op"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		var current int
		switch {
		case req.Op == "next":
			current = s.Next()
		case req.Op == "back":
			current = s.Back()
		case req.Target != nil:
			current = s.Navigate(*req.Target)
		default:
			http.Error(w, "target or op required", 400)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]int{"current": current})
	}
}

// POST /sessions/{sessionID}/mark  { "index": 2 }
func MarkHandler(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := env.Sessions.Get(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "session not found", 404)
			return
		}
		var req struct {
			Index int `json:"index"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		s.Mark(req.Index)
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	}
}

// POST /sessions/{sessionID}/finish — opens the confirmation gate.
func RequestFinishHandler(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := env.Sessions.Get(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "session not found", 404)
			return
		}
		kind, err := s.RequestFinish()
		if errors.Is(err, exam.ErrAttemptFinished) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"confirm": string(kind)})
	}
}

// POST /sessions/{sessionID}/finish/confirm
func ConfirmFinishHandler(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := chi.URLParam(r, "sessionID")
		s, ok := env.Sessions.Get(sid)
		if !ok {
			http.Error(w, "session not found", 404)
			return
		}
		res, err := s.Confirm(r.Context())
		switch {
		case errors.Is(err, exam.ErrNoPendingConfirmation):
			http.Error(w, err.Error(), 400)
			return
		case errors.Is(err, exam.ErrAttemptFinished):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case err != nil:
			http.Error(w, err.Error(), 500)
			return
		}
		if res == nil {
			// abandoned
			env.Sessions.Remove(sid)
			_ = env.Audit.Append(r.Context(), audit.EventSessionAbandoned, sid, nil)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		env.Sessions.Remove(sid)
		_ = env.Audit.Append(r.Context(), audit.EventAttemptCommitted, sid, map[string]any{
			"exam_id": res.ExamID, "score": res.Score,
		})
		_ = json.NewEncoder(w).Encode(res)
	}
}

// POST /sessions/{sessionID}/finish/decline — a complete no-op beyond
// closing the gate.
func DeclineFinishHandler(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := env.Sessions.Get(chi.URLParam(r, "sessionID"))
		if !ok {
			http.Error(w, "session not found", 404)
			return
		}
		s.Decline()
		w.WriteHeader(http.StatusNoContent)
	}
}

// DELETE /sessions/{sessionID} — tear down without finishing. An attempt
// that already finished (confirmed or expired) has its result committed;
// teardown then only deregisters the session and must not touch the store.
func AbandonSessionHandler(env Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := chi.URLParam(r, "sessionID")
		s, ok := env.Sessions.Get(sid)
		if !ok {
			http.Error(w, "session not found", 404)
			return
		}
		if !s.Finished() {
			if err := env.Store.ClearSession(r.Context(), s.ExamID()); err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			_ = env.Audit.Append(r.Context(), audit.EventSessionAbandoned, sid, nil)
		}
		env.Sessions.Remove(sid)
		w.WriteHeader(http.StatusNoContent)
	}
}
