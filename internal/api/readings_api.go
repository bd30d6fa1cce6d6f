package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/diabetree-app/diabetree/internal/domain"
	"github.com/diabetree-app/diabetree/internal/infra/metrics"
)

// ─── Reading log endpoints (/api/readings) ──────────────────────────────────

type addReadingRequest struct {
	Value           float64    `json:"value"`
	Timestamp       *time.Time `json:"timestamp,omitempty"`
	MealContext     string     `json:"meal_context,omitempty"`
	ActivityContext string     `json:"activity_context,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// handleAddReading appends a reading and immediately re-evaluates, so
// the client gets the post-reading progression state in one round trip.
func (s *Server) handleAddReading(w http.ResponseWriter, r *http.Request) {
	var req addReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Value <= 0 {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidValue.Error())
		return
	}

	ts := time.Now().UTC()
	if req.Timestamp != nil {
		ts = req.Timestamp.UTC()
	}
	reading := domain.Reading{
		ID:              uuid.NewString(),
		Value:           req.Value,
		Timestamp:       ts,
		MealContext:     req.MealContext,
		ActivityContext: req.ActivityContext,
		Notes:           req.Notes,
	}

	if err := s.db.InsertReading(s.owner, reading); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	metrics.ReadingsRecorded.Inc()

	result, err := s.engine.Evaluate(s.owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"reading":    reading,
		"evaluation": result,
	})
}

func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	var (
		readings []domain.Reading
		err      error
	)
	if sinceParam := r.URL.Query().Get("since"); sinceParam != "" {
		since, perr := time.Parse(time.RFC3339, sinceParam)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC3339")
			return
		}
		readings, err = s.db.ListReadingsSince(s.owner, since)
	} else {
		readings, err = s.db.ListReadings(s.owner)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"readings": readings,
		"count":    len(readings),
	})
}

func (s *Server) handleDeleteReading(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.db.DeleteReading(s.owner, id); err != nil {
		if errors.Is(err, domain.ErrReadingNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleDeleteAllReadings(w http.ResponseWriter, r *http.Request) {
	n, err := s.db.DeleteAllReadings(s.owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
