package dev

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ReloadMessageType represents the type of reload message.
type ReloadMessageType string

const (
	// ReloadTypeReload requests a full page reload.
	ReloadTypeReload ReloadMessageType = "reload"

	// ReloadTypeRoutes announces a rebuilt route table.
	ReloadTypeRoutes ReloadMessageType = "routes"

	// ReloadTypeError displays an error overlay.
	ReloadTypeError ReloadMessageType = "error"

	// ReloadTypeClear clears the error overlay.
	ReloadTypeClear ReloadMessageType = "clear"
)

// ReloadMessage is sent to connected clients.
type ReloadMessage struct {
	Type  ReloadMessageType `json:"type"`
	Error string            `json:"error,omitempty"`
	File  string            `json:"file,omitempty"`
	Count int               `json:"count,omitempty"`
}

// ReloadServer manages WebSocket connections for hot reload.
type ReloadServer struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

// NewReloadServer creates a new reload server.
func NewReloadServer() *ReloadServer {
	return &ReloadServer{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins in dev mode
				return true
			},
		},
	}
}

// HandleWebSocket handles WebSocket upgrade requests.
func (s *ReloadServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	// Keep connection alive, remove on close
	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// NotifyReload tells all clients to reload the page.
func (s *ReloadServer) NotifyReload() {
	s.broadcast(ReloadMessage{Type: ReloadTypeReload})
}

// NotifyRoutes tells all clients the route table was rebuilt.
func (s *ReloadServer) NotifyRoutes(count int) {
	s.broadcast(ReloadMessage{Type: ReloadTypeRoutes, Count: count})
}

// NotifyError sends an error to all clients.
func (s *ReloadServer) NotifyError(errMsg, file string) {
	s.broadcast(ReloadMessage{
		Type:  ReloadTypeError,
		Error: errMsg,
		File:  file,
	})
}

// ClearError clears the error overlay on all clients.
func (s *ReloadServer) ClearError() {
	s.broadcast(ReloadMessage{Type: ReloadTypeClear})
}

// broadcast sends a message to all connected clients.
func (s *ReloadServer) broadcast(msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		clients = append(clients, conn)
	}
	s.mu.RUnlock()

	for _, conn := range clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (s *ReloadServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close closes all client connections.
func (s *ReloadServer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
}

// DevClientScript is the JavaScript injected into pages for hot reload.
const DevClientScript = `
<script>
(function() {
	var reconnectDelay = 1000;
	var maxReconnectDelay = 30000;

	function connect() {
		var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
		var ws = new WebSocket(protocol + '//' + location.host + '/_metamon/reload');

		ws.onopen = function() {
			console.log('[Metamon] Hot reload connected');
			reconnectDelay = 1000;
		};

		ws.onmessage = function(event) {
			var msg = JSON.parse(event.data);
			switch (msg.type) {
				case 'reload':
					console.log('[Metamon] Reloading page...');
					location.reload();
					break;
				case 'routes':
					console.log('[Metamon] Route table rebuilt (' + msg.count + ' routes)');
					location.reload();
					break;
				case 'error':
					showError(msg.error, msg.file);
					break;
				case 'clear':
					clearError();
					break;
			}
		};

		ws.onclose = function() {
			console.log('[Metamon] Hot reload disconnected, reconnecting...');
			setTimeout(connect, reconnectDelay);
			reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
		};

		ws.onerror = function() {
			ws.close();
		};
	}

	function showError(error, file) {
		clearError();
		var overlay = document.createElement('div');
		overlay.id = 'metamon-error-overlay';
		overlay.style.cssText = 'position:fixed;top:0;left:0;right:0;bottom:0;background:rgba(0,0,0,0.85);color:#fff;font-family:monospace;padding:2rem;z-index:99999;overflow:auto;';
		var title = document.createElement('h2');
		title.textContent = 'Route Error' + (file ? ' in ' + file : '');
		title.style.cssText = 'color:#ff5555;margin-bottom:1rem;';
		var pre = document.createElement('pre');
		pre.textContent = error;
		pre.style.cssText = 'white-space:pre-wrap;font-size:14px;line-height:1.5;';
		overlay.appendChild(title);
		overlay.appendChild(pre);
		document.body.appendChild(overlay);
	}

	function clearError() {
		var existing = document.getElementById('metamon-error-overlay');
		if (existing) existing.remove();
	}

	connect();
})();
</script>
`
