// Package wamtest provides an in-process fake WAM speaker for tests.
//
// The fake listens on a loopback TCP port and speaks the real wire
// protocol: HTTP GET requests in, concatenated HTTP responses out. Tests
// script it per method name and can push unsolicited notifications to
// every connected client, the way a real speaker announces state changes.
package wamtest

import (
	"bufio"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Request is one decoded command received by the fake speaker.
type Request struct {
	API     string // "UIC" or "CPM"
	Method  string
	Payload string // decoded XML command payload
	User    string // mobileUUID header
}

// Responder produces the response bodies for one request. Each returned
// body is sent as its own HTTP response, in order. Returning nil sends
// nothing, like a speaker that answers a command only with notifications.
type Responder func(req Request) []string

// Server is a fake WAM speaker.
type Server struct {
	ln net.Listener

	mu         sync.Mutex
	responders map[string]Responder
	requests   []Request
	conns      map[net.Conn]struct{}
	closed     bool

	wg sync.WaitGroup
}

// NewServer starts a fake speaker on a loopback port and registers its
// shutdown with t.Cleanup.
func NewServer(t *testing.T) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("wamtest: listen: %v", err)
	}

	s := &Server{
		ln:         ln,
		responders: make(map[string]Responder),
		conns:      make(map[net.Conn]struct{}),
	}
	s.wg.Add(1)
	go s.acceptLoop()
	t.Cleanup(s.Close)
	return s
}

// Host returns the fake's address.
func (s *Server) Host() string {
	host, _, _ := net.SplitHostPort(s.ln.Addr().String())
	return host
}

// Port returns the fake's TCP port.
func (s *Server) Port() int {
	_, port, _ := net.SplitHostPort(s.ln.Addr().String())
	n, _ := strconv.Atoi(port)
	return n
}

// Handle scripts the responses for one command method.
func (s *Server) Handle(method string, r Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responders[method] = r
}

// RespondWith scripts fixed response bodies for one command method.
func (s *Server) RespondWith(method string, bodies ...string) {
	s.Handle(method, func(Request) []string { return bodies })
}

// Requests returns all commands received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsFor returns the received commands with the given method name.
func (s *Server) RequestsFor(method string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

// Push sends a message body to every connected client, as an unsolicited
// notification.
func (s *Server) Push(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.Write(wireResponse(body))
	}
}

// PushRaw sends arbitrary bytes to every connected client, for corrupting
// the stream on purpose.
func (s *Server) PushRaw(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.Write(p)
	}
}

// DropConnections closes every client connection but keeps listening, like
// a speaker rebooting mid-session.
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.Close()
	}
}

// Close stops the fake and drops all connections. Idempotent.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	s.ln.Close()
	s.wg.Wait()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	br := bufio.NewReader(conn)
	for {
		req, err := readRequest(br)
		if err != nil {
			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		responder := s.responders[req.Method]
		s.mu.Unlock()

		if responder == nil {
			continue
		}
		for _, body := range responder(req) {
			if _, err := conn.Write(wireResponse(body)); err != nil {
				return
			}
		}
	}
}

// readRequest parses one HTTP GET command request from the stream.
func readRequest(br *bufio.Reader) (Request, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return Request{}, err
	}
	line = strings.TrimRight(line, "\r\n")

	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 || parts[0] != "GET" {
		return Request{}, fmt.Errorf("wamtest: bad request line %q", line)
	}

	var req Request
	if u, err := url.Parse(parts[1]); err == nil {
		req.API = strings.TrimPrefix(u.Path, "/")
		req.Payload = u.Query().Get("cmd")
	}
	if start := strings.Index(req.Payload, "<name>"); start >= 0 {
		rest := req.Payload[start+len("<name>"):]
		if end := strings.Index(rest, "</name>"); end >= 0 {
			req.Method = rest[:end]
		}
	}

	// Headers until the blank line.
	for {
		h, err := br.ReadString('\n')
		if err != nil {
			return Request{}, err
		}
		h = strings.TrimRight(h, "\r\n")
		if h == "" {
			return req, nil
		}
		if v, ok := strings.CutPrefix(h, "mobileUUID:"); ok {
			req.User = strings.TrimSpace(v)
		}
	}
}

func wireResponse(body string) []byte {
	return []byte(fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nContent-Length: %d\r\nConnection: Keep-Alive\r\n\r\n%s",
		len(body), body))
}
