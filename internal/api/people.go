package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/datacollector/internal/person"
)

// PeopleResponse is the body of GET /people.
type PeopleResponse struct {
	People []person.Person `json:"people"`
	Count  int             `json:"count"`
}

// handleListPeople returns every stored person ordered by id.
func (s *Server) handleListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := s.people.List(r.Context())
	if err != nil {
		s.storageFailure(w, r, "listing people", err)
		return
	}
	writeJSON(w, http.StatusOK, PeopleResponse{People: people, Count: len(people)})
}

// handleCreatePerson validates the body and stores a new person.
func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	p, err := s.people.Create(r.Context(), fields)
	if err != nil {
		s.writeWriteError(w, r, "creating person", err)
		return
	}

	s.logger.Info("person created via API", "id", p.ID, "subject", subject(r),
		"request_id", requestID(r.Context()))
	writeJSON(w, http.StatusCreated, p)
}

// handleGetPerson returns one person or 404.
func (s *Server) handleGetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	p, found, err := s.people.Get(r.Context(), id)
	if err != nil {
		s.storageFailure(w, r, "getting person", err)
		return
	}
	if !found {
		writeNotFound(w, "person not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleUpdatePerson replaces every field of an existing person.
// Zero rows affected is reported as 404.
func (s *Server) handleUpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	p, n, err := s.people.Update(r.Context(), id, fields)
	if err != nil {
		s.writeWriteError(w, r, "updating person", err)
		return
	}
	if n == 0 {
		writeNotFound(w, "person not found")
		return
	}

	s.logger.Info("person updated via API", "id", id, "subject", subject(r),
		"request_id", requestID(r.Context()))
	writeJSON(w, http.StatusOK, p)
}

// handleDeletePerson removes a person. Deleting an unknown id still
// returns 204.
func (s *Server) handleDeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	n, err := s.people.Delete(r.Context(), id)
	if err != nil {
		s.storageFailure(w, r, "deleting person", err)
		return
	}

	if n > 0 {
		s.logger.Info("person deleted via API", "id", id, "subject", subject(r),
			"request_id", requestID(r.Context()))
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeWriteError maps a Create/Update failure to a response.
func (s *Server) writeWriteError(w http.ResponseWriter, r *http.Request, action string, err error) {
	var ve *person.ValidationError
	if errors.As(err, &ve) {
		writeValidationError(w, ve.Fields)
		return
	}
	s.storageFailure(w, r, action, err)
}

func (s *Server) storageFailure(w http.ResponseWriter, r *http.Request, action string, err error) {
	s.logger.Error(action+" failed", "error", err,
		"request_id", requestID(r.Context()))
	if errors.Is(err, person.ErrStorage) {
		writeStorageError(w)
		return
	}
	writeInternalError(w, "internal server error")
}

// decodeFields reads a person.Fields body. On failure it writes 400 and
// returns false.
func decodeFields(w http.ResponseWriter, r *http.Request) (person.Fields, bool) {
	var f person.Fields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return person.Fields{}, false
	}
	return f, true
}

// parseID reads the {id} URL parameter. On failure it writes 400 and
// returns false.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

// subject returns the token subject for audit logging, or "" when auth is off.
func subject(r *http.Request) string {
	if c := claimsFromContext(r.Context()); c != nil {
		return c.Subject
	}
	return ""
}
