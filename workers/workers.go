package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/alpacahq/gopaca/calendar"
	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/goregistry/external/segment"
	"github.com/alpacahq/goregistry/external/slack"
	"github.com/alpacahq/goregistry/grreg"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/utils"
	"github.com/alpacahq/goregistry/utils/grevents"
	"github.com/alpacahq/goregistry/utils/initializer"
	"github.com/alpacahq/goregistry/utils/signalman"
	"github.com/alpacahq/goregistry/workers/backup"
	"github.com/alpacahq/goregistry/workers/deadline"
	"github.com/alpacahq/goregistry/workers/gc"
	"github.com/alpacahq/goregistry/workers/journal"
	registrarWorker "github.com/alpacahq/goregistry/workers/registrar"
	"github.com/alpacahq/goregistry/workers/snapshot"
	"github.com/jinzhu/gorm"
	"github.com/robfig/cron"
	"go.uber.org/zap/zapcore"
)

var (
	cronWg sync.WaitGroup
	c      *cron.Cron
)

func shutdown() error {

	// stop crons so no new ones start
	if c != nil {
		c.Stop()
	}

	// wait for existing crons to finish
	cronWg.Wait()

	// stop the RMQ related tasks explicitly
	journal.Stop()
	deadline.Stop()

	// sleep a second to let things cleanup
	<-time.After(time.Second)
	return nil
}

func init() {
	rand.Seed(clock.Now().UTC().UnixNano())
	// set the clock
	clock.Set()

	// register env defaults
	initializer.Initialize()

	flag.Parse()

	// log errors to slack
	log.Logger().AddCallback(
		"gr-workers_slack_errors",
		zapcore.ErrorLevel,
		func(i interface{}) {
			msg := slack.NewServerError()
			msg.SetBody(i)
			slack.Notify(msg)
		},
	)

	// set deployment level on logger
	log.Logger().SetDeploymentLevel(env.GetVar("REGISTRY_MODE"))

	// handler initializers
	grevents.RegisterSignalHandler()

	signalman.RegisterFunc("workers_shutdown", shutdown)
	signalman.Start()
}

func main() {
	if utils.StandBy() {
		log.Info("starting in standby mode - no crons will be run")
		signalman.Wait()
		return
	}

	central, _ := time.LoadLocation("America/Chicago")
	c = cron.NewWithLocation(central)

	// journal worker
	log.Info(
		"starting journal worker",
		"interval",
		env.GetVar("JOURNAL_WORKER_INTERVAL"))

	c.AddFunc(fmt.Sprintf("@every %v", env.GetVar("JOURNAL_WORKER_INTERVAL")), func() {
		cronWg.Add(1)
		defer cronWg.Done()
		journal.Work()
	})

	// deadline worker
	log.Info(
		"starting deadline worker",
		"interval",
		env.GetVar("DEADLINE_WORKER_INTERVAL"))

	c.AddFunc(fmt.Sprintf("@every %v", env.GetVar("DEADLINE_WORKER_INTERVAL")), func() {
		cronWg.Add(1)
		defer cronWg.Done()
		deadline.Work()
	})

	// snapshot worker - gates itself to once per business day
	log.Info(
		"starting snapshot worker",
		"interval",
		env.GetVar("SNAPSHOT_WORKER_INTERVAL"))

	c.AddFunc(fmt.Sprintf("@every %v", env.GetVar("SNAPSHOT_WORKER_INTERVAL")), func() {
		cronWg.Add(1)
		defer cronWg.Done()
		snapshot.Work()
	})

	// registrar position sync - tue-sat @ 6 AM central
	c.AddFunc("0 0 6 * * TUE-SAT", func() {
		cronWg.Add(1)
		defer cronWg.Done()

		now := clock.Now().In(central)
		log.Info("registrar sync", "time", now)

		registrarWorker.Work(clock.Now().In(central).Add(-24 * time.Hour))
	})

	// daily backup (shareholder records + movements) - every weekday just before midnight central
	c.AddFunc("0 59 23 * * MON-FRI", func() {
		cronWg.Add(1)
		defer cronWg.Done()

		asOf := clock.Now().In(central)

		if calendar.IsMarketDay(asOf) {
			log.Info("shareholder records and movements daily backup", "time", asOf)
			backup.WorkDaily(asOf)
		}
	})

	//Daily Segment Update
	c.AddFunc("@hourly", func() {
		cronWg.Add(1)
		defer cronWg.Done()

		log.Info("starting to send information to segment")

		holders := []models.Shareholder{}

		if err := db.DB().Find(&holders).Error; err != nil && err != gorm.ErrRecordNotFound {
			log.Error("failed to find shareholders", "error", err)
		}

		cutoff := clock.Now().Add(-time.Hour)

		total := 0
		for _, holder := range holders {
			// institutional holders are often registered without a
			// direct email
			if holder.Email == nil {
				continue
			}

			if err := segment.Identify(holder); err != nil {
				log.Error(
					"failed to append information to segment",
					"shareholder", holder.ID,
					"error", err)
				continue
			}
			total++

			if holder.CreatedAt.After(cutoff) {
				ev := segment.NewShareholderCreatedEvent()
				ev.SetSubjectID(holder.IDAsUUID())
				ev.SetProperty("entity_type", string(holder.EntityType))
				ev.SetProperty("status", string(holder.Status))

				if err := segment.Track(ev); err != nil {
					log.Error(
						"failed to track shareholder registration",
						"shareholder", holder.ID,
						"error", err)
				}
			}
		}

		log.Info("sent information to segment", "shareholders", total)
	})

	// weekly backup (decided resolutions) - every sunday just before midnight central
	c.AddFunc("0 59 23 * * SUN", func() {
		cronWg.Add(1)
		defer cronWg.Done()

		now := clock.Now().In(central)

		log.Info("resolutions weekly backup", "time", now)
		backup.WorkWeekly(now)
	})

	// monthly backup (holding statements) - second saturday of the month just before midnight central
	c.AddFunc("0 59 23 * * SAT", func() {
		cronWg.Add(1)
		defer cronWg.Done()

		now := clock.Now().In(central)

		// ensure it is the second saturday of the month
		if now.Day() > 7 && now.Day() < 15 {
			log.Info("egnyte monthly backup", "time", now)
			backup.WorkMonthly(now)
		}
	})

	// sync the S3 backups to egnyte monthly - every sunday @ noon
	c.AddFunc("0 0 12 1 * SUN", func() {
		cronWg.Add(1)
		defer cronWg.Done()

		now := clock.Now().In(central)

		log.Info("S3 backups to egnyte monthly sync", "time", now)
		backup.Sync(now)
	})

	// Call GC worker every hour
	c.AddFunc("0 0 * * * *", func() {
		gc.Work()
	})

	authSync := func() {
		log.Info("auth cache syncing")

		start := time.Now()

		if err := grreg.Services().AccessKey().WithTx(db.DB()).Sync(); err != nil {
			log.Error("failed to sync auth cache", "error", err)
		}

		log.Info("auth cache synced", "elapsed", time.Now().Sub(start))
	}

	// Sync the auth cache every 30 minutes
	c.AddFunc("@every 30m", authSync)

	// run it immediately
	authSync()

	// queue the crons
	c.Start()

	// start grevent listeners
	go func() { grevents.RunForever() }()

	log.Info(
		"workers are live",
		"mode", env.GetVar("REGISTRY_MODE"),
		"clock", clock.Now())

	signalman.Wait()
}
