package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/alpacahq/goregistry/models"
	"github.com/eapache/channels"
	"github.com/gofrs/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type StreamTestSuite struct {
	suite.Suite
}

func TestStreamTestSuite(t *testing.T) {
	suite.Run(t, new(StreamTestSuite))
}

func InitializeForTest() {
	send = channels.NewInfiniteChannel()
	router = NewRouter()
	go stream()
}

func (s *StreamTestSuite) TestCache() {
	InitializeForTest()
	l1 := Listener{}
	s1 := "stream_1"
	s2 := "stream_2"
	router.Update(&l1, []string{s1, s2})

	listeners := router.getListeners(s1)
	assert.Len(s.T(), listeners, 1)
	assert.Equal(s.T(), listeners[0], &l1)

	listeners = router.getListeners(s2)
	assert.Len(s.T(), listeners, 1)
	assert.Equal(s.T(), listeners[0], &l1)

	streams := router.getStreams(&l1)
	assert.Len(s.T(), streams, 2)
	for _, st := range streams {
		assert.True(s.T(), st == s1 || st == s2)
	}

	s3 := "stream_3"
	router.Update(&l1, []string{s1, s3})

	listeners = router.getListeners(s3)
	assert.Len(s.T(), listeners, 1)
	assert.Equal(s.T(), listeners[0], &l1)

	listeners = router.getListeners(s2)
	assert.Len(s.T(), listeners, 0)

	router.Update(&l1, []string{s1, s2, s3})

	listeners = router.getListeners(s1)
	assert.Len(s.T(), listeners, 1)
	assert.Equal(s.T(), listeners[0], &l1)

	listeners = router.getListeners(s2)
	assert.Len(s.T(), listeners, 1)
	assert.Equal(s.T(), listeners[0], &l1)

	listeners = router.getListeners(s3)
	assert.Len(s.T(), listeners, 1)
	assert.Equal(s.T(), listeners[0], &l1)

	// multiple listeners
	l2 := Listener{}
	s4 := "stream_4"
	router.Update(&l2, []string{s2, s4})

	listeners = router.getListeners(s4)
	assert.Len(s.T(), listeners, 1)
	assert.Equal(s.T(), listeners[0], &l2)

	listeners = router.getListeners(s2)
	assert.Len(s.T(), listeners, 2)

	streams = router.getStreams(&l2)
	assert.Len(s.T(), streams, 2)
	for _, st := range streams {
		assert.True(s.T(), st == s2 || st == s4)
	}

	router.Update(&l2, []string{s4})
	streams = router.getStreams(&l2)
	assert.Len(s.T(), streams, 1)
	for _, st := range streams {
		assert.True(s.T(), st == s4)
	}

	router.Update(&l1, []string{})
	assert.Len(s.T(), router.getStreams(&l1), 0)
}

func (s *StreamTestSuite) TestCacheConcurrency() {
	InitializeForTest()

	l := Listener{}
	s1 := "stream_1"
	s2 := "stream_2"

	router.Update(&l, []string{s1})

	var wg sync.WaitGroup
	routines := make(chan func(), 2)
	routines <- func() {
		router.Update(&l, []string{})
		wg.Done()
	}
	routines <- func() {
		router.Update(&l, []string{s1, s2})
		wg.Done()
	}
	close(routines)
	for r := range routines {
		wg.Add(1)
		r()
	}
	wg.Wait()
	streams := router.getStreams(&l)
	assert.Len(s.T(), streams, 2)
}

func (s *StreamTestSuite) TestStream() {
	adminID := uuid.Must(uuid.NewV4())
	keyID := uuid.Must(uuid.NewV4())

	authFunc = func(keyId string, secretKey string) (*models.AccessKey, error) {
		return &models.AccessKey{
			ID:      keyId,
			AdminID: adminID,
		}, nil
	}

	InitializeForTest()
	srv := httptest.NewServer(http.HandlerFunc(Handler))
	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		assert.FailNow(s.T(), fmt.Sprintf("failed to connect to websocket: %v", err))
	}

	// send auth
	secret := uuid.Must(uuid.NewV4())

	if err := conn.WriteJSON(InboundMessage{Action: "authenticate", Data: map[string]interface{}{
		"key_id":     keyID.String(),
		"secret_key": secret.String(),
	}}); err != nil {
		assert.FailNow(s.T(), fmt.Sprintf("failed to authenticate - error: %v", err))
	}

	// receive auth ack
	om := OutboundMessage{}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		assert.FailNow(s.T(), fmt.Sprintf("failed to read auth ack: %v", err))
	}
	if err = json.Unmarshal(msg, &om); err != nil || om.Stream != "authorization" {
		assert.FailNow(s.T(), fmt.Sprintf("invalid auth ack received: %v", string(msg)))
	}

	// listen
	if err := conn.WriteJSON(InboundMessage{Action: "listen", Data: map[string]interface{}{
		"streams": []string{LedgerUpdates},
	}}); err != nil {
		assert.FailNow(s.T(), fmt.Sprintf("failed to listen - error: %v", err))
	}

	// read listen ack
	_, msg, err = conn.ReadMessage()
	if err != nil {
		assert.FailNow(s.T(), fmt.Sprintf("failed to read auth ack: %v", err))
	}
	if err = json.Unmarshal(msg, &om); err != nil || om.Stream != "listening" {
		assert.FailNow(s.T(), fmt.Sprintf("invalid auth ack received: %v", string(msg)))
	}

	// stream some data
	for i := 0; i < 5; i++ {
		pushForTest(LedgerUpdates, map[string]interface{}{
			"sequence":     i + 1,
			"kind":         "transfer",
			"class":        "COMMON",
			"shares":       "2500",
			"effective_at": "2026-08-21T14:30:00Z",
			"from_holder":  "8a9ba9e3-0f82-4a5e-9e01-3f3ab5c9d101",
			"to_holder":    "904837e3-3b76-47ec-b432-046db621571b",
		})
	}

	// receive the data
	for i := 0; i < 5; i++ {
		_, msg, err = conn.ReadMessage()
		if err != nil {
			assert.FailNow(s.T(), fmt.Sprintf("failed to read data stream message - error: %v", err))
		}
		if err = json.Unmarshal(msg, &om); err != nil {
			assert.FailNow(s.T(), fmt.Sprintf("failed to unmarshal data stream message %v - error: %v", string(msg), err))
		}
	}

	if err = conn.Close(); err != nil {
		assert.FailNow(s.T(), fmt.Sprintf("failed to close websocket - error: %v", err))
	}
}
