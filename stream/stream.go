package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/gopaca/rmq/pubsub"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/service/accesskey"
	"github.com/eapache/channels"
	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack"
)

const (
	// websocket config
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	// streams
	LedgerUpdates   = "ledger_updates"
	WorkflowUpdates = "workflow_updates"
)

var (
	send     *channels.InfiniteChannel
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
	authFunc func(keyId, secretKey string) (*models.AccessKey, error)
)

// InboundMessage is the standard message sent by clients of the stream interface
type InboundMessage struct {
	Action string                 `json:"action" msgpack:"action"`
	Data   map[string]interface{} `json:"data" msgpack:"data"`
}

// OutboundMessage is the standard message sent by the server to update clients
// of the stream interface
type OutboundMessage struct {
	Stream string      `json:"stream" msgpack:"stream"`
	Data   interface{} `json:"data" msgpack:"data"`
}

type Listener struct {
	sync.Mutex
	c            *websocket.Conn
	done         chan struct{}
	marshal      func(v interface{}) ([]byte, error)
	unmarshal    func(data []byte, v interface{}) error
	auth         atomic.Value
	adminID      string
	keyID        string
	authenticate func(keyId, secretKey string) (*models.AccessKey, error)
}

func (l *Listener) authenticated() bool {
	return l.auth.Load() != nil
}

func (l *Listener) authorize(id, keyID string) {
	l.adminID = id
	l.keyID = keyID
	l.auth.Store(struct{}{})
}

func (l *Listener) handleOutbound(m OutboundMessage) {
	if buf, err := l.marshal(m); err != nil {
		log.Error(
			"stream outbound marshal error",
			"key_id", l.keyID,
			"msg", m,
			"listener", l.c.RemoteAddr().String(),
			"error", err)
	} else {
		log.Debug(
			"stream outbound",
			"key_id", l.keyID,
			"admin_id", l.adminID,
			"stream", m.Stream,
			"data", preview(buf),
			"listener", l.c.RemoteAddr().String())

		// prevents concurrent write to the websocket connection
		l.Lock()
		defer l.Unlock()

		if err := l.c.WriteMessage(websocket.BinaryMessage, buf); err != nil {
			log.Error(
				"stream outbound write error",
				"key_id", l.keyID,
				"msg", string(buf),
				"listener", l.c.RemoteAddr().String(),
				"error", err)
		}
	}
}

// only support authentication and listen for now
func (l *Listener) handleInbound(m InboundMessage) {
	switch m.Action {
	case "authenticate":
		if v, ok := m.Data["key_id"]; ok {
			keyID := v.(string)
			if v, ok = m.Data["secret_key"]; ok {
				secretKey := v.(string)

				if accessKey, err := l.authenticate(keyID, secretKey); err == nil {
					l.authorize(accessKey.AdminID.String(), keyID)

					l.handleOutbound(OutboundMessage{
						Stream: "authorization",
						Data: map[string]interface{}{
							"status": "authorized",
							"action": "authenticate",
						},
					})
				} // don't notify of error for security reasons

				if !l.authenticated() {
					l.handleOutbound(OutboundMessage{
						Stream: "authorization",
						Data: map[string]interface{}{
							"status": "unauthorized",
							"action": "authenticate",
						},
					})
				}
			}
		}
	case "listen":
		if !l.authenticated() {
			l.handleOutbound(OutboundMessage{
				Stream: "authorization",
				Data: map[string]interface{}{
					"status": "unauthorized",
					"action": "listen",
				},
			})
			return
		}

		streams := l.parseStreams(m.Data)
		router.Update(l, streams)

		l.handleOutbound(OutboundMessage{
			Stream: "listening",
			Data: map[string]interface{}{
				"streams": streams,
			},
		})
	}
}

// parseStreams filters the requested streams down to the valid ones.
// Access keys belong to administrators who see the whole register, so
// the feeds are register wide and no per-subject routing is applied.
func (l *Listener) parseStreams(data map[string]interface{}) (streams []string) {
	if v, ok := data["streams"]; ok {
		for _, s := range v.([]interface{}) {
			stream, ok := s.(string)

			if !ok {
				continue
			}

			if !validStream(stream) {
				continue
			}

			streams = append(streams, stream)
		}
	}
	return streams
}

func validStream(stream string) bool {
	switch stream {
	case LedgerUpdates:
		fallthrough
	case WorkflowUpdates:
		return true
	default:
		return false
	}
}

func (l *Listener) consume() {
	defer func() {
		// cleanup cache when the connection is closed
		router.Update(l, []string{})
		l.done <- struct{}{}
	}()
	l.c.SetPongHandler(func(string) error {
		return l.c.SetReadDeadline(clock.Now().Add(pongWait))
	})
	for {
		msgType, buf, err := l.c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				log.Warn(
					"stream unexpected socket failure",
					"listener", l.c.RemoteAddr().String(),
					"error", err)
			}
			return
		}
		switch msgType {
		case websocket.TextMessage:
			fallthrough
		case websocket.BinaryMessage:
			m := InboundMessage{}
			if err = l.unmarshal(buf, &m); err != nil {
				// don't log for security reasons
				continue
			}
			log.Debug(
				"stream inbound",
				"key_id", l.keyID,
				"action", m.Action,
				"data", preview(buf),
				"listener", l.c.RemoteAddr().String())

			l.handleInbound(m)
		case websocket.CloseMessage:
			return
		}
	}
}

func stream() {
	for v := range send.Out() {
		if v == nil {
			continue
		}

		m := v.(OutboundMessage)

		for _, l := range router.GetListeners(m.Stream) {
			l.handleOutbound(m)
		}
	}
}

func (l *Listener) produce() {
	ticker := time.NewTicker(pingPeriod)
	for {
		select {
		case <-ticker.C:
			l.c.WriteMessage(websocket.PingMessage, []byte{})
		case <-l.done:
			return
		}
	}
}

// preview truncates a frame for debug logging
func preview(buf []byte) string {
	if len(buf) > 20 {
		buf = buf[:20]
	}
	return string(buf)
}

// pushForTest sends data locally to the stream interface. Outside of
// tests, messages cross the cluster through the message queue.
func pushForTest(stream string, data interface{}) {
	send.In() <- OutboundMessage{Stream: stream, Data: data}
}

func rmqSubscribe(c <-chan pubsub.Message, cancel context.CancelFunc) context.CancelFunc {
	go func() {
		for buf := range c {
			msg := OutboundMessage{}
			if err := json.Unmarshal(buf, &msg); err != nil {
				log.Error("stream failed to parse rmq message", "error", err, "message", string(buf))
				continue
			}
			send.In() <- msg
		}
	}()

	return cancel
}

// Initialize builds the send channel as well as the cache, and
// must be called before any data flows over the stream interface
func Initialize(authService accesskey.AccessKeyService, c <-chan pubsub.Message, cancel context.CancelFunc) {
	authFunc = func(keyId, secretKey string) (*models.AccessKey, error) {
		service := authService.WithTx(db.DB())
		return service.Verify(keyId, secretKey)
	}

	send = channels.NewInfiniteChannel()
	router = NewRouter()
	router.cancel = rmqSubscribe(c, cancel)

	go stream()
}

// Handler hooks into the REST interface and handles the incoming
// streaming requests, and upgrades the connection
func Handler(w http.ResponseWriter, r *http.Request) {
	// upgrade the socket
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("stream socket upgrade error", "error", err)
		return
	}

	// build the listener
	l := Listener{
		c:            ws,
		done:         make(chan struct{}),
		authenticate: authFunc,
	}

	// check the codec
	switch r.Header.Get("Content-Type") {
	case "application/x-msgpack":
		l.marshal = marshalMsgPack
		l.unmarshal = unmarshalMsgPack
	default:
		l.marshal = json.Marshal
		l.unmarshal = json.Unmarshal
	}

	if l.c != nil {
		log.Info("new stream listener", "listener", ws.RemoteAddr().String())
	}

	// begin streaming
	go l.consume()
	go l.produce()
}

// msgpack marshal wrapper
func marshalMsgPack(v interface{}) ([]byte, error) {
	return msgpack.Marshal(v)
}

// msgpack unmarshal wrapper
func unmarshalMsgPack(data []byte, v interface{}) error {
	return msgpack.Unmarshal(data, v)
}
