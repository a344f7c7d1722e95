package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/edustack/examsim/internal/audit"
)

// GET /audit/{key}?limit=N — lifecycle events for a session or exam.
func AuditEventsHandler(alog *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		events, err := alog.Recent(r.Context(), chi.URLParam(r, "key"), limit)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if events == nil {
			events = []audit.Event{}
		}
		_ = json.NewEncoder(w).Encode(events)
	}
}
