// Package web streams bake progress to websocket clients and serves an
// embedded viewer page together with a png snapshot of the latest baked
// table.
package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/auroralab/aurora/log"
	"github.com/auroralab/aurora/lut"
	"github.com/gorilla/websocket"
)

var logger = log.New("web")

// ConfigEvent describes the running bake. It is replayed to every client
// on connect.
type ConfigEvent struct {
	Type    string `json:"type"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Samples int    `json:"samples"`
	Profile string `json:"profile"`
}

// ProgressEvent reports baked rows for the running pass.
type ProgressEvent struct {
	Type  string `json:"type"`
	Rows  uint32 `json:"rows"`
	Total uint32 `json:"total"`
}

// DoneEvent reports a completed pass and its duration.
type DoneEvent struct {
	Type    string  `json:"type"`
	Seconds float64 `json:"seconds"`
}

// NewConfigEvent assembles the config event replayed to connecting clients.
func NewConfigEvent(width, height, samples int, profile string) ConfigEvent {
	return ConfigEvent{
		Type:    "config",
		Width:   width,
		Height:  height,
		Samples: samples,
		Profile: profile,
	}
}

type Server struct {
	addr string

	// The config event replayed to every client on connect.
	config ConfigEvent

	// Tonemap settings for the png snapshot endpoint.
	exposure float32
	scale    int

	// Connected clients and their write locks.
	clients      map[*websocket.Conn]*sync.Mutex
	clientsMutex sync.RWMutex

	// The latest baked table served by the snapshot endpoint.
	snapshot      *lut.Table
	snapshotMutex sync.RWMutex

	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// Create a new progress server listening on addr. Exposure and scale
// control the tonemapped png snapshot endpoint.
func NewServer(addr string, config ConfigEvent, exposure float32, scale int) *Server {
	s := &Server{
		addr:     addr,
		config:   config,
		exposure: exposure,
		scale:    scale,
		clients:  make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveViewer)
	mux.HandleFunc("/ws", s.serveWebSocket)
	mux.HandleFunc("/lut.png", s.serveSnapshot)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}

	return s
}

// Handler returns the http handler backing the server.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve blocks, accepting viewer and websocket connections until Close is
// called.
func (s *Server) Serve() error {
	logger.Noticef("serving table viewer on http://%s", s.addr)

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close shuts down the http server and disconnects all clients.
func (s *Server) Close() {
	s.httpServer.Close()

	s.clientsMutex.Lock()
	for client := range s.clients {
		client.Close()
	}
	s.clients = make(map[*websocket.Conn]*sync.Mutex)
	s.clientsMutex.Unlock()
}

// SetSnapshot publishes a baked table on the png endpoint. The table must
// not be written to after it is handed over; the baker satisfies this by
// producing a fresh table per pass.
func (s *Server) SetSnapshot(table *lut.Table) {
	s.snapshotMutex.Lock()
	s.snapshot = table
	s.snapshotMutex.Unlock()
}

// BroadcastProgress pushes a progress event to all connected clients.
func (s *Server) BroadcastProgress(rows, total uint32) {
	s.broadcast(ProgressEvent{Type: "progress", Rows: rows, Total: total})
}

// BroadcastDone pushes a pass completion event to all connected clients.
func (s *Server) BroadcastDone(bakeTime time.Duration) {
	s.broadcast(DoneEvent{Type: "done", Seconds: bakeTime.Seconds()})
}

func (s *Server) broadcast(event interface{}) {
	s.clientsMutex.RLock()
	var failed []*websocket.Conn
	for client, mutex := range s.clients {
		mutex.Lock()
		err := client.WriteJSON(event)
		mutex.Unlock()
		if err != nil {
			logger.Warningf("dropping client %s: %v", client.RemoteAddr(), err)
			client.Close()
			failed = append(failed, client)
		}
	}
	s.clientsMutex.RUnlock()

	if len(failed) > 0 {
		s.clientsMutex.Lock()
		for _, client := range failed {
			delete(s.clients, client)
		}
		s.clientsMutex.Unlock()
	}
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	s.clientsMutex.Lock()
	s.clients[conn] = connMutex
	s.clientsMutex.Unlock()
	defer func() {
		s.clientsMutex.Lock()
		delete(s.clients, conn)
		s.clientsMutex.Unlock()
	}()

	// Replay the bake config to the new client
	connMutex.Lock()
	err = conn.WriteJSON(s.config)
	connMutex.Unlock()
	if err != nil {
		return
	}

	// Incoming messages are ignored; the read loop only detects closed
	// connections.
	for {
		if _, _, err = conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	s.snapshotMutex.RLock()
	table := s.snapshot
	s.snapshotMutex.RUnlock()

	if table == nil {
		http.Error(w, "no table baked yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := table.EncodePNG(w, s.exposure, s.scale); err != nil {
		logger.Errorf("encoding table snapshot: %v", err)
	}
}

func (s *Server) serveViewer(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(viewerPage))
}

const viewerPage = `<!DOCTYPE html>
<html>
<head>
<title>aurora</title>
<style>
 body { background: #111; color: #ddd; font-family: monospace; text-align: center; }
 img { image-rendering: pixelated; margin-top: 1em; border: 1px solid #444; }
 #status { margin-top: 1em; }
</style>
</head>
<body>
<h3>aurora multiple-scattering table</h3>
<div id="status">connecting...</div>
<div><img id="lut" src="/lut.png" alt="baked table" onerror="this.style.display='none'"></div>
<script>
var status = document.getElementById("status");
var img = document.getElementById("lut");
var ws = new WebSocket("ws://" + location.host + "/ws");
ws.onmessage = function (msg) {
	var event = JSON.parse(msg.data);
	switch (event.type) {
	case "config":
		status.textContent = event.width + "x" + event.height + " table, " + event.samples + " samples (" + event.profile + ")";
		break;
	case "progress":
		status.textContent = "baking: " + event.rows + "/" + event.total + " rows";
		break;
	case "done":
		status.textContent = "baked in " + event.seconds.toFixed(2) + "s";
		img.style.display = "";
		img.src = "/lut.png?t=" + Date.now();
		break;
	}
};
ws.onclose = function () { status.textContent = "disconnected"; };
</script>
</body>
</html>
`
