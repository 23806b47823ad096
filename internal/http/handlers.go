package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"daytrack/internal/core"
	"daytrack/internal/log"
	"daytrack/internal/storage"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	records, err := s.records.List(r.Context(), month)
	if err != nil {
		s.internalError(w, r, "List records failed", err)
		return
	}
	writeJSON(w, r, http.StatusOK, newRecordViews(records))
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.records.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, "Get record failed", err)
		return
	}
	writeJSON(w, r, http.StatusOK, newRecordView(rec))
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	created, err := s.records.Create(r.Context(), rec)
	if err != nil {
		s.writeServiceError(w, r, "Create record failed", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newRecordView(created))
}

func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	updated, err := s.records.Update(r.Context(), r.PathValue("id"), rec)
	if err != nil {
		s.writeServiceError(w, r, "Update record failed", err)
		return
	}
	writeJSON(w, r, http.StatusOK, newRecordView(updated))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.records.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeServiceError(w, r, "Delete record failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMonthSummary requires an explicit month; picking a default month
// is left to the client.
func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if core.DaysInMonth(month) == 0 {
		writeError(w, r, http.StatusBadRequest, "month must be given as YYYY-MM")
		return
	}
	summary, err := s.records.MonthSummary(r.Context(), month)
	if err != nil {
		s.internalError(w, r, "Month summary failed", err)
		return
	}
	writeJSON(w, r, http.StatusOK, newSummaryResponse(summary))
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (core.DailyRecord, bool) {
	var rec core.DailyRecord
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&rec); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return rec, false
	}
	return rec, true
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var dup *core.DuplicateDateError
	switch {
	case errors.As(err, &dup):
		writeError(w, r, http.StatusConflict, fmt.Sprintf(
			"An entry for %s already exists. Please edit the existing entry or choose a different date.", dup.Date))
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "entry not found")
	case errors.Is(err, core.ErrEmptyDate), errors.Is(err, core.ErrInvalidDate):
		writeError(w, r, http.StatusUnprocessableEntity, "date must be given as YYYY-MM-DD")
	case errors.Is(err, core.ErrNoteTooLong):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		s.internalError(w, r, msg, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), msg, log.FieldError, err)
	writeError(w, r, http.StatusInternalServerError, "internal error")
}
