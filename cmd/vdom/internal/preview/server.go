// Package preview serves a markup file as a live page. Every change to the
// file is decoded, reconciled against the mounted tree, and the new body is
// pushed to connected browsers over a websocket.
package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/go-drift/vdom/pkg/core"
	"github.com/go-drift/vdom/pkg/dom/htmldom"
	"github.com/go-drift/vdom/pkg/markup"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

const reloadScript = `(function () {
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
  ws.onmessage = function (e) {
    var u = JSON.parse(e.data);
    if (u.error) { console.error("vdom: " + u.error); return; }
    document.body.innerHTML = u.body;
  };
})();`

// Options configures a Server.
type Options struct {
	Title    string
	MaxDepth int
	Logger   *slog.Logger
}

// Update is the message sent to browsers after each load.
type Update struct {
	Version   int    `json:"version"`
	Mutations int    `json:"mutations"`
	Body      string `json:"body,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Server owns one live document built from a markup file.
type Server struct {
	path   string
	opts   Options
	logger *slog.Logger

	// mu serializes all engine access.
	mu      sync.Mutex
	doc     *htmldom.Document
	owner   *core.BuildOwner
	root    *core.Root
	current core.Node
	last    Update

	clientsMu sync.Mutex
	clients   map[*client]struct{}
}

type client struct {
	send chan []byte
}

// New creates a Server for the markup file at path.
func New(path string, opts Options) (*Server, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		path:    abs,
		opts:    opts,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}, nil
}

// Load decodes the file and mounts it, or reconciles it against the mounted
// tree. A failed load leaves the previous tree in place.
func (s *Server) Load() (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.decode()
	if err != nil {
		s.last = Update{Version: s.last.Version + 1, Error: err.Error()}
		return s.last, err
	}

	prev := s.current
	s.current = next
	if s.root == nil {
		if err := s.mount(); err != nil {
			s.current = nil
			s.last = Update{Version: s.last.Version + 1, Error: err.Error()}
			return s.last, err
		}
	} else {
		s.doc.ResetMutations()
		if err := s.root.Update(); err != nil {
			s.current = prev
			s.last = Update{Version: s.last.Version + 1, Error: err.Error()}
			return s.last, err
		}
	}

	s.last = Update{
		Version:   s.last.Version + 1,
		Mutations: len(s.doc.Mutations()),
		Body:      htmldom.OuterHTML(s.root.Node().Live()),
	}
	s.logger.Debug("preview loaded", "path", s.path, "version", s.last.Version, "mutations", s.last.Mutations)
	return s.last, nil
}

func (s *Server) decode() (core.Node, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer f.Close()
	n, err := markup.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(s.path), err)
	}
	return n, nil
}

func (s *Server) mount() error {
	doc := htmldom.New()
	doc.SetTitle(s.opts.Title)
	script := doc.CreateElement("script")
	script.AppendChild(doc.CreateTextNode(reloadScript))
	doc.Head().AppendChild(script)

	owner := core.NewBuildOwner(doc, nil)
	if s.opts.MaxDepth > 0 {
		owner.MaxDepth = s.opts.MaxDepth
	}
	owner.Logger = s.logger
	root, err := owner.Mount(core.ViewFunc(func() core.View { return s.current }), doc.Body())
	if err != nil {
		return err
	}
	s.doc, s.owner, s.root = doc, owner, root
	return nil
}

// Reload loads the file and broadcasts the result.
func (s *Server) Reload() error {
	u, err := s.Load()
	s.Broadcast(u)
	return err
}

// Broadcast queues u for every connected client. Clients whose queue is full
// miss the update.
func (s *Server) Broadcast(u Update) {
	msg, err := json.Marshal(u)
	if err != nil {
		s.logger.Error("failed to encode update", "err", err)
		return
	}
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			s.logger.Warn("preview client is behind, dropping update", "version", u.Version)
		}
	}
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// Handler serves the page at / and the update stream at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	var buf bytes.Buffer
	var err error
	if s.doc == nil {
		err = fmt.Errorf("nothing loaded")
	} else {
		err = s.doc.Render(&buf)
	}
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := conn.CloseRead(r.Context())
	c := &client{send: make(chan []byte, sendBuffer)}

	s.mu.Lock()
	last := s.last
	s.mu.Unlock()
	if last.Version > 0 {
		if msg, err := json.Marshal(last); err == nil {
			c.send <- msg
		}
	}

	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	s.clientsMu.Unlock()
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		s.clientsMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				s.logger.Debug("websocket write failed", "err", err)
				return
			}
		}
	}
}
