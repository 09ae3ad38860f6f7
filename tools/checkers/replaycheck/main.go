package main

import (
	"flag"
	"fmt"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/grreg"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/utils/initializer"
	"github.com/gofrs/uuid"
)

// Replays the ledger for every holding and compares the result
// against the stored shares_outstanding. Any drift means a mutation
// bypassed the ledger services and needs a hand written correction.
func main() {
	initializer.Initialize()

	id := flag.String("shareholder_id", "", "limit the check to one shareholder")
	flag.Parse()

	tx := db.RepeatableRead()
	defer tx.Rollback()

	q := tx.Order("shareholder_id asc, class asc")

	if *id != "" {
		if _, err := uuid.FromString(*id); err != nil {
			panic("invalid shareholder id")
		}
		q = q.Where("shareholder_id = ?", *id)
	}

	holdings := []models.Holding{}

	if err := q.Find(&holdings).Error; err != nil {
		panic(err)
	}

	service := grreg.Services().Ledger().WithTx(tx)

	drifted := 0

	for _, h := range holdings {
		replayed, err := service.ReplayOutstanding(h.ShareholderIDAsUUID(), h.Class)
		if err != nil {
			fmt.Println(h.ShareholderID, h.Class, "replay failed:", err)
			drifted++
			continue
		}

		if replayed != h.SharesOutstanding {
			fmt.Printf("%v %v drift: ledger says %v, holding says %v\n",
				h.ShareholderID, h.Class, replayed, h.SharesOutstanding)
			drifted++
		}
	}

	fmt.Printf("checked %v holdings, %v drifted\n", len(holdings), drifted)
}
