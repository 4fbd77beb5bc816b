package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/claude/posecoach/internal/catalog"
	"github.com/claude/posecoach/internal/session"
)

const wsReadLimit = 1 << 20

// wsMessage is the envelope for every WebSocket message in either direction.
type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type wsReply struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type pingData struct {
	Timestamp any `json:"timestamp"`
}

// handleWebSocket streams frames for one session. /ws opens a new session
// that ends when the socket closes; /ws/{id} attaches to one created over
// HTTP and leaves it open on close. A session accepts one socket at a time.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	var sess *session.Session
	var err error
	id := chi.URLParam(r, "id")
	owned := id == ""
	if owned {
		sess, err = s.sessions.CreateAttached("")
	} else {
		sess, err = s.sessions.Attach(id)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer func() {
		if !owned {
			s.sessions.Detach(sess.ID())
			return
		}
		if err := s.sessions.End(sess.ID()); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			s.log.Warn("ending websocket session", "session", sess.ID(), "error", err)
		}
	}()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade failed", "session", sess.ID(), "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	log := s.log.With("session", sess.ID(), "user", userInfoFromContext(r).Login)
	log.Info("websocket connected")

	if err := conn.WriteJSON(wsReply{Type: "session_info", Data: s.sessionInfo(sess)}); err != nil {
		return
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket read failed", "error", err)
			}
			log.Info("websocket disconnected")
			return
		}

		var msg wsMessage
		var reply wsReply
		if err := json.Unmarshal(raw, &msg); err != nil {
			reply = errorReply("Invalid JSON format")
		} else {
			reply = s.dispatch(sess, msg)
		}
		if err := conn.WriteJSON(reply); err != nil {
			log.Warn("websocket write failed", "error", err)
			return
		}
	}
}

// dispatch handles one client message and builds the reply.
func (s *Server) dispatch(sess *session.Session, msg wsMessage) wsReply {
	switch msg.Type {
	case "frame":
		var req frameRequest
		if err := s.decodeData(msg.Data, &req); err != nil {
			return errorReply(err.Error())
		}
		if len(req.Landmarks) == 0 && len(req.LandmarkList) == 0 {
			return errorReply("No frame data provided")
		}
		return wsReply{Type: "analysis_result", Data: sess.ProcessFrame(req.snapshot())}

	case "change_exercise":
		var req changeExerciseRequest
		if err := s.decodeData(msg.Data, &req); err != nil {
			return errorReply("Exercise name required")
		}
		return wsReply{Type: "exercise_changed", Data: changeExercise(sess, req.ExerciseName)}

	case "get_exercises":
		return wsReply{Type: "exercises_list", Data: map[string]any{
			"exercises":        displayNames(s.sessions.Registry()),
			"current_exercise": catalog.DisplayName(sess.Exercise()),
		}}

	case "reload_exercises":
		res, err := s.sessions.Reload()
		if err != nil {
			s.log.Error("catalog reload failed", "error", err)
			return errorReply("Failed to reload exercises")
		}
		return wsReply{Type: "exercises_reloaded", Data: reloadSummary(res)}

	case "get_session_stats":
		st := sess.Stats()
		st.PoseHistory = lastScores(st.PoseHistory, 10)
		return wsReply{Type: "session_stats", Data: st}

	case "update_settings":
		var req settingsRequest
		if err := s.decodeData(msg.Data, &req); err != nil {
			return errorReply(err.Error())
		}
		return wsReply{Type: "settings_updated", Data: sess.UpdateSettings(req.CorrectPoseThreshold, req.FeedbackCooldown)}

	case "ping":
		var req pingData
		_ = json.Unmarshal(msg.Data, &req)
		return wsReply{Type: "pong", Data: map[string]any{
			"timestamp":        req.Timestamp,
			"session_id":       sess.ID(),
			"status":           "active",
			"current_exercise": catalog.DisplayName(sess.Exercise()),
		}}
	}
	return errorReply("Unknown message type: " + msg.Type)
}

func (s *Server) decodeData(data json.RawMessage, v any) error {
	if len(data) > 0 {
		if err := json.Unmarshal(data, v); err != nil {
			return errors.New("invalid message data")
		}
	}
	return s.validateStruct(v)
}

func errorReply(msg string) wsReply {
	return wsReply{Type: "error", Data: map[string]string{"error": msg}}
}

func lastScores(scores []float64, n int) []float64 {
	if len(scores) > n {
		return scores[len(scores)-n:]
	}
	return scores
}
