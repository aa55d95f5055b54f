package transport

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"simviewer/internal/logger"
	"simviewer/internal/wire"
)

// reconnectDelay is the fixed backoff between websocket connection attempts.
const reconnectDelay = 3 * time.Second

// messageBuffer bounds how many decoded messages may queue between frames.
const messageBuffer = 64

// Socket is the websocket receiver. It runs a connect/read/decode loop on a
// goroutine and delivers decoded messages (one of *wire.Definition,
// *wire.StateUpdate, wire.Snapshot) on Messages; the main loop drains the
// channel each frame so all scene mutation stays on the main thread.
type Socket struct {
	url      string
	log      *logger.Logger
	Messages chan any
	done     chan struct{}
}

// Dial starts a websocket receiver for the backend at host:port. It returns
// immediately; the connection (and every reconnect after a close) happens on
// the background loop with a fixed delay.
func Dial(host string, port int, log *logger.Logger) *Socket {
	u := url.URL{Scheme: "ws", Host: fmt.Sprintf("%s:%d", host, port)}
	s := &Socket{
		url:      u.String(),
		log:      log,
		Messages: make(chan any, messageBuffer),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// Close stops the receive loop. In-flight messages already queued on Messages
// remain readable.
func (s *Socket) Close() {
	close(s.done)
}

func (s *Socket) run() {
	for {
		select {
		case <-s.done:
			return
		default:
		}
		conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
		if err != nil {
			s.log.Logf("transport: websocket dial %s: %v, retrying in %s", s.url, err, reconnectDelay)
			if !s.sleep() {
				return
			}
			continue
		}
		s.log.Logf("transport: websocket connected to %s", s.url)
		s.readLoop(conn)
		conn.Close()
		if !s.sleep() {
			return
		}
	}
}

// readLoop reads frames until the connection drops. Malformed JSON is logged
// and dropped without ending the session.
func (s *Socket) readLoop(conn *websocket.Conn) {
	for {
		select {
		case <-s.done:
			return
		default:
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			s.log.Logf("transport: websocket closed: %v", err)
			return
		}
		msg, err := wire.Decode(data)
		if err != nil {
			s.log.Logf("transport: dropped message: %v", err)
			continue
		}
		select {
		case s.Messages <- msg:
		default:
			// Frame backlog: drop the oldest so state stays fresh.
			select {
			case <-s.Messages:
			default:
			}
			s.Messages <- msg
		}
	}
}

func (s *Socket) sleep() bool {
	select {
	case <-s.done:
		return false
	case <-time.After(reconnectDelay):
		return true
	}
}
