package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/cherepashka123/browser-pet-companion/internal/applog"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
	"nhooyr.io/websocket"
)

// IncomingMsg is a message from the extension to the engine.
type IncomingMsg struct {
	Type string `json:"type"`

	// Tab events and the initial snapshot.
	Tab  json.RawMessage `json:"tab,omitempty"`
	Tabs json.RawMessage `json:"tabs,omitempty"`

	// User responses to a category prompt.
	TabID      int    `json:"tabId,omitempty"`
	Domain     string `json:"domain,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`

	// closeTabs requests.
	TabIDs []int `json:"tabIds,omitempty"`

	// Command response fields.
	ID    string `json:"id,omitempty"`
	OK    *bool  `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

// Incoming message types.
const (
	MsgSnapshot        = "snapshot"
	MsgTabCreated      = "tabCreated"
	MsgTabUpdated      = "tabUpdated"
	MsgTabActivated    = "tabActivated"
	MsgTabRemoved      = "tabRemoved"
	MsgConfirmCategory = "confirmCategory"
	MsgDenyCategory    = "denyCategory"
	MsgMuteDomain      = "muteDomain"
	MsgCloseTabs       = "closeTabs"
)

// MetricsPayload is the health summary pushed to the extension.
type MetricsPayload struct {
	TotalTabs       int    `json:"totalTabs"`
	ZombieCount     int    `json:"zombieCount"`
	DuplicateGroups int    `json:"duplicateGroups"`
	ClutterLevel    string `json:"clutterLevel"`
	Emotion         string `json:"emotion"`
	BadgeColor      string `json:"badgeColor"`
}

// OutgoingMsg is a command from the engine to the extension.
type OutgoingMsg struct {
	ID     string `json:"id"`
	Action string `json:"action"`

	// categoryPrompt fields.
	TabID      int    `json:"tabId,omitempty"`
	Domain     string `json:"domain,omitempty"`
	CategoryID string `json:"categoryId,omitempty"`
	Message    string `json:"message,omitempty"`

	// petUpdate fields.
	Metrics *MetricsPayload `json:"metrics,omitempty"`

	// closeTabs fields.
	TabIDs []int `json:"tabIds,omitempty"`

	Error string `json:"error,omitempty"`
}

// Outgoing actions.
const (
	ActionCategoryPrompt = "categoryPrompt"
	ActionPetUpdate      = "petUpdate"
	ActionNudge          = "nudge"
	ActionCloseTabs      = "closeTabs"
)

// Server manages the WebSocket connection to the extension.
type Server struct {
	port    int
	msgs    chan IncomingMsg
	mu      sync.Mutex
	conn    *websocket.Conn
	connCtx context.Context
}

// New creates a new Server. Port 0 means the caller manages the listener.
func New(port int) *Server {
	return &Server{
		port: port,
		msgs: make(chan IncomingMsg, 64),
	}
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// Messages returns the channel of incoming messages from the extension.
func (s *Server) Messages() <-chan IncomingMsg {
	return s.msgs
}

// Connected reports whether an extension is connected.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Send sends a command to the connected extension. Sending with no
// extension connected is a silent no-op; the next connection gets a
// fresh petUpdate anyway.
func (s *Server) Send(msg OutgoingMsg) error {
	s.mu.Lock()
	conn := s.conn
	ctx := s.connCtx
	s.mu.Unlock()

	if conn == nil {
		return nil
	}

	applog.Info("ws.send", "action", msg.Action, "id", msg.ID)
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return conn.Write(ctx, websocket.MessageText, data)
}

// SendPetUpdate pushes the current health metrics to the extension.
func (s *Server) SendPetUpdate(id string, m types.HealthMetrics, badgeColor string) error {
	return s.Send(OutgoingMsg{
		ID:     id,
		Action: ActionPetUpdate,
		Metrics: &MetricsPayload{
			TotalTabs:       m.TotalTabs,
			ZombieCount:     len(m.ZombieTabs),
			DuplicateGroups: len(m.DuplicateGroups),
			ClutterLevel:    string(m.ClutterLevel),
			Emotion:         string(m.Emotion),
			BadgeColor:      badgeColor,
		},
	})
}

// Handler returns an http.Handler that accepts WebSocket upgrades.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Printf("websocket accept: %v", err)
			applog.Error("ws.accept", err)
			return
		}

		conn.SetReadLimit(16 << 20) // 16 MB — snapshots with many tabs can be large

		ctx := r.Context()
		s.mu.Lock()
		if s.conn != nil {
			applog.Info("ws.replaced")
			s.conn.CloseNow()
		}
		s.conn = conn
		s.connCtx = ctx
		s.mu.Unlock()

		applog.Info("ws.connected", "remote", r.RemoteAddr)

		defer func() {
			s.mu.Lock()
			if s.conn == conn {
				s.conn = nil
				s.connCtx = nil
			}
			s.mu.Unlock()
			conn.CloseNow()
			applog.Info("ws.disconnected")
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg IncomingMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				applog.Error("ws.parse", err)
				continue
			}
			applog.Info("ws.recv", "type", msg.Type)
			select {
			case s.msgs <- msg:
			default:
			}
		}
	})
}

// ListenAndServe starts the WebSocket server on the configured port.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/", s.Handler())

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	applog.Info("server.start", "addr", addr)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	return srv.ListenAndServe()
}
