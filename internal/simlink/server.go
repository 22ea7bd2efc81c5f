package simlink

import (
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/banshee-data/pathtrack/internal/control"
	"github.com/banshee-data/pathtrack/internal/monitoring"
)

// CycleFunc runs one control cycle for one telemetry record.
type CycleFunc func(control.Telemetry) control.Command

// Server accepts platform websocket sessions and drives one control
// cycle per inbound telemetry frame. Cycles are serialized across
// sessions with a mutex so the driver keeps its strict
// one-cycle-at-a-time discipline even if a platform reconnects before
// its old session is torn down.
type Server struct {
	cycle CycleFunc

	mu sync.Mutex
}

// NewServer returns a Server that feeds telemetry to the given cycle
// function.
func NewServer(cycle CycleFunc) *Server {
	return &Server{cycle: cycle}
}

// ServeMux returns the HTTP mux with the websocket endpoint mounted at
// the root, matching where the platform connects.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleSession)
	return mux
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		monitoring.Logf("simlink: failed to accept session: %v", err)
		return
	}
	defer c.CloseNow()

	session := uuid.NewString()[:8]
	monitoring.Logf("simlink: session %s connected from %s", session, r.RemoteAddr)

	ctx := r.Context()
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			monitoring.Logf("simlink: session %s disconnected: %v", session, err)
			return
		}
		reply := s.handleFrame(data)
		if reply == nil {
			continue
		}
		if err := c.Write(ctx, websocket.MessageText, reply); err != nil {
			monitoring.Logf("simlink: session %s write failed: %v", session, err)
			return
		}
	}
}

// handleFrame maps one inbound frame to its reply. Non-event frames get
// no reply; event frames without usable telemetry get a manual frame.
func (s *Server) handleFrame(data []byte) []byte {
	event, payload, ok := decodeFrame(data)
	if !ok {
		return nil
	}
	if event != eventTelemetry {
		return encodeManual()
	}
	t, ok := decodeTelemetry(payload)
	if !ok {
		return encodeManual()
	}

	s.mu.Lock()
	cmd := s.cycle(t)
	s.mu.Unlock()

	reply, err := encodeSteer(cmd)
	if err != nil {
		monitoring.Logf("simlink: %v", err)
		return encodeManual()
	}
	return reply
}
