package segment

import (
	"fmt"
	"sync"

	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/utils"
	analytics "gopkg.in/segmentio/analytics-go.v3"
)

var (
	once   sync.Once
	client analytics.Client
)

// Track an event with Segment
func Track(e Event) error {
	once.Do(func() {
		client = analytics.New(env.GetVar("SEGMENT_KEY"))
	})

	if utils.Dev() {
		return nil
	}

	return client.Enqueue(e.trackable())
}

// Identify Send Segment information about shareholders
func Identify(sh models.Shareholder) error {
	once.Do(func() {
		client = analytics.New(env.GetVar("SEGMENT_KEY"))
	})

	if sh.Email == nil {
		return fmt.Errorf("shareholder email is nil")
	}

	traits := analytics.NewTraits().
		SetEmail(*sh.Email).
		SetName(sh.LegalName).
		Set("status", sh.Status).
		Set("entityType", sh.EntityType).
		Set("updatedAt", sh.UpdatedAt)

	if sh.Country != nil {
		traits.Set("country", *sh.Country)
	}

	return client.Enqueue(analytics.Identify{
		UserId: sh.ID,
		Traits: traits,
	})
}
