package journal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/rmq/pubsub"
	"github.com/alpacahq/goregistry/dbtest"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/stream"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type JournalTestSuite struct {
	dbtest.Suite
}

func TestJournalTestSuite(t *testing.T) {
	suite.Run(t, new(JournalTestSuite))
}

func (s *JournalTestSuite) SetupSuite() {
	s.SetupDB()
}

func (s *JournalTestSuite) TearDownSuite() {
	s.TeardownDB()
}

func (s *JournalTestSuite) TestPublishEntries() {
	msgC := make(chan pubsub.Message, batchLimit)

	w := &journalWorker{
		stream: msgC,
		done:   make(chan struct{}, 1),
	}

	holder := uuid.Must(uuid.NewV4()).String()
	class := enum.Common

	seed := func(kind enum.LedgerEntryKind, shares int64) {
		entry := models.LedgerEntry{
			Kind:         kind,
			ToHolderID:   &holder,
			ToClass:      &class,
			ToShares:     &shares,
			Actor:        "secretary",
			TransactedAt: clock.Now(),
		}
		require.Nil(s.T(), db.DB().Create(&entry).Error)
	}

	// first round picks up everything and parks the watermark
	{
		seed(enum.Issuance, 1000)
		seed(enum.Transfer, 250)

		require.Nil(s.T(), w.publishEntries(time.Second))

		assert.Len(s.T(), msgC, 2)

		msg := stream.OutboundMessage{}
		require.Nil(s.T(), json.Unmarshal(<-msgC, &msg))
		assert.Equal(s.T(), stream.LedgerUpdates, msg.Stream)
		<-msgC

		cursor := models.JournalCursor{}
		require.Nil(s.T(), db.DB().
			Where("topic = ?", stream.LedgerUpdates).
			Find(&cursor).Error)

		var max struct{ Sequence uint }
		require.Nil(s.T(), db.DB().
			Model(&models.LedgerEntry{}).
			Select("max(sequence) as sequence").
			Scan(&max).Error)

		assert.Equal(s.T(), max.Sequence, cursor.LastSequence)
	}

	// an idle round moves nothing
	{
		require.Nil(s.T(), w.publishEntries(time.Second))
		assert.Len(s.T(), msgC, 0)
	}

	// only entries past the watermark go out
	{
		seed(enum.Repurchase, 100)

		require.Nil(s.T(), w.publishEntries(time.Second))
		assert.Len(s.T(), msgC, 1)

		msg := stream.OutboundMessage{}
		require.Nil(s.T(), json.Unmarshal(<-msgC, &msg))

		data, err := json.Marshal(msg.Data)
		require.Nil(s.T(), err)

		entry := models.LedgerEntry{}
		require.Nil(s.T(), json.Unmarshal(data, &entry))
		assert.Equal(s.T(), enum.Repurchase, entry.Kind)
	}
}

func (s *JournalTestSuite) TestPushTimesOut() {
	w := &journalWorker{
		// nobody reading, so the send can never complete
		stream: make(chan pubsub.Message),
		done:   make(chan struct{}, 1),
	}

	err := w.push(stream.OutboundMessage{Stream: stream.LedgerUpdates}, 10*time.Millisecond)
	assert.NotNil(s.T(), err)
}

func (s *JournalTestSuite) TestTrackSkipsUnattributed() {
	w := &journalWorker{done: make(chan struct{}, 1)}

	// no to-side holder, nothing to attribute the event to
	w.track(models.LedgerEntry{
		Kind:         enum.Cancellation,
		Actor:        "secretary",
		TransactedAt: time.Now(),
	})
}
