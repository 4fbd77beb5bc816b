package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/claude/posecoach/internal/catalog"
	"github.com/claude/posecoach/internal/scoring"
	"github.com/claude/posecoach/internal/session"
)

// sessionInfo is returned when a session is opened.
type sessionInfo struct {
	SessionID       string           `json:"session_id"`
	CurrentExercise string           `json:"current_exercise"`
	DisplayName     string           `json:"display_name"`
	Exercises       []string         `json:"exercises"`
	Settings        session.Settings `json:"settings"`
}

type exerciseChanged struct {
	Success         bool   `json:"success"`
	CurrentExercise string `json:"current_exercise"`
	DisplayName     string `json:"display_name"`
	Message         string `json:"message"`
}

type catalogReloaded struct {
	Exercises   []string             `json:"exercises"`
	Skipped     int                  `json:"skipped"`
	Diagnostics []catalog.Diagnostic `json:"diagnostics"`
	Message     string               `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"sessions":  s.sessions.Len(),
		"exercises": s.sessions.Registry().Len(),
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.List())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := s.decodeJSON(r, &req, true); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sess, err := s.sessions.Create(req.Exercise)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Debug("session opened over http", "session", sess.ID(), "user", userInfoFromContext(r).Login)
	writeJSON(w, http.StatusCreated, s.sessionInfo(sess))
}

func (s *Server) sessionInfo(sess *session.Session) sessionInfo {
	exercise := sess.Exercise()
	return sessionInfo{
		SessionID:       sess.ID(),
		CurrentExercise: exercise,
		DisplayName:     catalog.DisplayName(exercise),
		Exercises:       displayNames(s.sessions.Registry()),
		Settings:        sess.Settings(),
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Stats())
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.End(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req frameRequest
	if err := s.decodeJSON(r, &req, false); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sess.ProcessFrame(req.snapshot()))
}

func (s *Server) handleChangeExercise(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req changeExerciseRequest
	if err := s.decodeJSON(r, &req, false); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res := changeExercise(sess, req.ExerciseName)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func changeExercise(sess *session.Session, name string) exerciseChanged {
	key, err := sess.ChangeExercise(name)
	if err != nil {
		current := sess.Exercise()
		return exerciseChanged{
			CurrentExercise: current,
			DisplayName:     catalog.DisplayName(current),
			Message:         "Invalid exercise name",
		}
	}
	return exerciseChanged{
		Success:         true,
		CurrentExercise: key,
		DisplayName:     catalog.DisplayName(key),
		Message:         "Exercise changed successfully",
	}
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req settingsRequest
	if err := s.decodeJSON(r, &req, false); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, sess.UpdateSettings(req.CorrectPoseThreshold, req.FeedbackCooldown))
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.Registry().Exercises())
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	reg := s.sessions.Registry()
	name := chi.URLParam(r, "name")
	rules, ok := reg.Rules(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	key := catalog.NormalizeName(name)
	writeJSON(w, http.StatusOK, catalog.Exercise{Name: key, DisplayName: catalog.DisplayName(key), Rules: rules})
}

func (s *Server) handlePutExercise(w http.ResponseWriter, r *http.Request) {
	if s.editor == nil {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "catalog is read-only"})
		return
	}
	var req putExerciseRequest
	if err := s.decodeJSON(r, &req, false); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.editor.AddExercise(name, req.rules()); err != nil {
		s.writeError(w, err)
		return
	}
	s.handleGetExercise(w, r)
}

func (s *Server) handleReloadCatalog(w http.ResponseWriter, r *http.Request) {
	res, err := s.sessions.Reload()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reloadSummary(res))
}

func reloadSummary(res *catalog.Result) catalogReloaded {
	diags := res.Diagnostics
	if diags == nil {
		diags = []catalog.Diagnostic{}
	}
	return catalogReloaded{
		Exercises:   displayNames(res.Registry),
		Skipped:     len(diags),
		Diagnostics: diags,
		Message:     "Exercises reloaded from configuration file",
	}
}

// handleScore evaluates a single frame without a session.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := s.decodeJSON(r, &req, false); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	key := catalog.NormalizeName(req.Exercise)
	rules, ok := s.sessions.Registry().Rules(key)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	threshold := session.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	writeJSON(w, http.StatusOK, scoring.EvaluatePosture(req.snapshot(), key, rules, threshold))
}

// writeError maps domain errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrUnknownExercise):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrSessionAttached):
		status = http.StatusConflict
	case errors.Is(err, session.ErrTooManySessions):
		status = http.StatusServiceUnavailable
	case errors.Is(err, catalog.ErrInvalidExerciseName), errors.Is(err, catalog.ErrMalformedRule):
		status = http.StatusBadRequest
	default:
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func displayNames(reg *catalog.Registry) []string {
	names := reg.Names()
	for i, n := range names {
		names[i] = catalog.DisplayName(n)
	}
	return names
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
