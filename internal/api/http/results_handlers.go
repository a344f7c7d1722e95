package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edustack/examsim/internal/audit"
	"github.com/edustack/examsim/internal/exam"
)

// GET /results/{examID}
// A stored record belonging to a different exam is reported as absent so the
// caller redirects instead of rendering mismatched data.
func GetResultHandler(store *exam.ResultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		res, err := store.Load(r.Context(), examID)
		if errors.Is(err, exam.ErrNoResult) {
			http.Error(w, "no result for exam", 404)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		avail, err := store.IsReviewAvailable(r.Context(), examID)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		reviewed, err := store.HasBeenReviewed(r.Context(), examID)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result":           res,
			"review_available": avail,
			"reviewed":         reviewed,
		})
	}
}

// GET /results/{examID}/review
// Serving the review payload consumes the one-time review grant; a reload
// afterwards lands on 409 and the caller goes back to results.
func ReviewHandler(store *exam.ResultStore, alog *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		examID := chi.URLParam(r, "examID")
		avail, err := store.IsReviewAvailable(r.Context(), examID)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if !avail {
			reviewed, err := store.HasBeenReviewed(r.Context(), examID)
			if err != nil {
				http.Error(w, err.Error(), 500)
				return
			}
			if reviewed {
				http.Error(w, "review already used", http.StatusConflict)
				return
			}
			http.Error(w, "review not available", 404)
			return
		}
		res, err := store.Load(r.Context(), examID)
		if err != nil {
			http.Error(w, "no result for exam", 404)
			return
		}
		if err := store.ConsumeReview(r.Context(), examID); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		_ = alog.Append(r.Context(), audit.EventReviewConsumed, examID, nil)
		// full record: questions with correct flags and justifications, with
		// the taker's answers overlaid client-side
		_ = json.NewEncoder(w).Encode(res)
	}
}
