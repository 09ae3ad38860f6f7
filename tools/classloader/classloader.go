package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/grerrors"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/service/shareclass"
	"github.com/alpacahq/goregistry/utils/grevents"
	"github.com/alpacahq/goregistry/utils/initializer"
)

var file = flag.String("file", "classes.json", "share class definitions to load")

func init() {
	flag.Parse()

	clock.Set()
}

func main() {
	initializer.Initialize()

	buf, err := ioutil.ReadFile(*file)
	if err != nil {
		panic(err)
	}

	classes := []models.ShareClass{}

	if err := json.Unmarshal(buf, &classes); err != nil {
		panic(err)
	}

	tx := db.Begin()
	srv := shareclass.Service().WithTx(tx)

	created, updated := 0, 0

	for i := range classes {
		sc := &classes[i]

		fmt.Printf("loading %v...\n", sc.Class)

		existing, err := srv.Get(sc.Class)
		if err != nil {
			if !grerrors.IsNotFound(err) {
				tx.Rollback()
				panic(err)
			}

			if _, err := srv.Create(sc); err != nil {
				tx.Rollback()
				panic(err)
			}

			created++
			continue
		}

		if _, err := srv.Update(sc.Class, map[string]interface{}{
			"name":                sc.Name,
			"voting_weight":       sc.VotingWeight,
			"convertible":         sc.Convertible,
			"conversion_ratio":    sc.ConversionRatio,
			"conversion_trigger":  sc.ConversionTrigger,
			"liquidation_pref":    sc.LiquidationPref,
			"dividend_rate":       sc.DividendRate,
			"anti_dilution":       sc.AntiDilution,
			"board_seats":         sc.BoardSeats,
			"transfer_restricted": sc.TransferRestricted,
		}); err != nil {
			tx.Rollback()
			panic(err)
		}

		if existing.TotalAuthorized != sc.TotalAuthorized {
			if _, err := srv.SetAuthorized(sc.Class, sc.TotalAuthorized); err != nil {
				tx.Rollback()
				panic(err)
			}
		}

		updated++
	}

	if err := tx.Commit().Error; err != nil {
		panic(err)
	}

	grevents.TriggerEvent(&grevents.Event{Name: grevents.EventClassRefreshed})

	fmt.Printf("load complete (%v created, %v updated)\n", created, updated)
}
