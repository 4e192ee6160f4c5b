package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/hetulpatel/edgescan/internal/logging"
)

type wsRequest struct {
	Type    string `json:"type"`
	Action  string `json:"action"`
	Persist *bool  `json:"persist"`
}

type wsEnvelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Errorf("[server] ws upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debugf("[server] ws read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(message, &req); err != nil {
			s.send(conn, wsEnvelope{Type: "error", Error: "invalid_json"})
			continue
		}

		action := req.Type
		if action == "" {
			action = req.Action
		}

		switch action {
		case "scan":
			persist := req.Persist != nil && *req.Persist
			logging.Infof("[server] ws scan request (persist=%v)", persist)
			payload := s.svc.GenerateSignals(ctx, nil, nil, nil)
			if persist {
				if _, err := s.svc.WriteSignals(ctx, payload, ""); err != nil {
					logging.Errorf("[server] persist signals: %v", err)
				}
			}
			s.send(conn, wsEnvelope{Type: "signals", Payload: payload})
		case "focus":
			persist := req.Persist == nil || *req.Persist
			logging.Infof("[server] ws focus request (persist=%v)", persist)
			payload := s.svc.ComputeFocus(ctx, persist)
			s.send(conn, wsEnvelope{Type: "focus", Payload: payload})
		default:
			logging.Warnf("[server] unknown ws action: %q", action)
			s.send(conn, wsEnvelope{Type: "error", Error: "unknown_action"})
		}
	}
}

func (s *Server) send(conn *websocket.Conn, env wsEnvelope) {
	if err := conn.WriteJSON(env); err != nil {
		logging.Errorf("[server] ws write: %v", err)
	}
}
