package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Server accepts WebSocket clients and fans messages out to the tables
// they joined. Connection lifecycle runs through the register and
// unregister channels so the bookkeeping has a single owner.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	logger      *log.Logger
	gameService *GameService

	register   chan *Connection
	unregister chan *Connection

	mu          sync.RWMutex
	connections map[*Connection]bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a server listening on addr once Start is called.
func NewServer(addr string, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Companion app for a tabletop game; any origin may connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:      logger.WithPrefix("server"),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start serves /ws and /health on the configured address. It blocks until
// the listener fails or the process shuts the server down.
func (s *Server) Start() error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.logger.Info("Listening", "addr", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

// Stop closes every client connection and ends the lifecycle loop.
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	return nil
}

// run owns the connections map mutations.
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, known := s.connections[conn]
			delete(s.connections, conn)
			total := len(s.connections)
			s.mu.Unlock()
			if !known {
				continue
			}

			// The seat survives the connection: mark the player offline
			// so the table sees it, and let them rejoin later.
			if playerID, code := conn.GetPlayer(), conn.GetGame(); playerID != "" && code != "" && s.gameService != nil {
				s.gameService.Disconnect(code, playerID)
			}
			_ = conn.Close()
			s.logger.Info("Client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Upgrade failed", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s.gameService)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

// BroadcastToGame sends msg to every connection seated at the game's table.
func (s *Server) BroadcastToGame(code string, msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.GetGame() != code {
			continue
		}
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Error("Send failed", "player", conn.GetPlayer(), "error", err)
		}
	}
}

// SendToPlayer sends msg to the named player's connection, if any.
func (s *Server) SendToPlayer(playerID string, msg *Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.GetPlayer() == playerID {
			return conn.SendMessage(msg)
		}
	}
	return fmt.Errorf("player not connected: %s", playerID)
}

// SetGameService wires the game service in both directions.
func (s *Server) SetGameService(gameService *GameService) {
	s.gameService = gameService
	if gameService != nil {
		gameService.SetServer(s)
	}
}
