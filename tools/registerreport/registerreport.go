package main

import (
	"math"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/service/classcache"
	"github.com/alpacahq/goregistry/service/holding"
	"github.com/alpacahq/goregistry/service/shareholder"
	"github.com/alpacahq/goregistry/utils/initializer"
)

func main() {
	initializer.Initialize()

	srv := shareholder.Service().WithTx(db.DB())

	holders, _, err := srv.List(shareholder.ShareholderQuery{Per: math.MaxInt32})
	if err != nil {
		panic(err)
	}

	holdingSrv := holding.Service(classcache.GetClassCache()).WithTx(db.DB())

	records := []RegisterReportRecord{}

	for _, h := range holders {
		views, err := holdingSrv.ForShareholder(h.IDAsUUID())
		if err != nil {
			panic(err)
		}

		for _, view := range views {
			email := ""
			if h.Email != nil {
				email = *h.Email
			}

			records = append(records, RegisterReportRecord{
				ShareholderID:     h.ID,
				LegalName:         h.LegalName,
				Email:             email,
				EntityType:        string(h.EntityType),
				Status:            string(h.Status),
				Class:             string(view.Class),
				SharesIssued:      view.SharesIssued,
				SharesOutstanding: view.SharesOutstanding,
				SharesReserved:    view.SharesReserved,
				ConsiderationPaid: view.ConsiderationPaid.String(),
				VotingPower:       view.VotingPower.String(),
			})
		}
	}

	if err := gocsv.MarshalFile(records, os.Stdout); err != nil {
		panic(err)
	}
}

type RegisterReportRecord struct {
	ShareholderID     string `csv:"shareholder_id"`
	LegalName         string `csv:"legal_name"`
	Email             string `csv:"email"`
	EntityType        string `csv:"entity_type"`
	Status            string `csv:"status"`
	Class             string `csv:"class"`
	SharesIssued      int64  `csv:"shares_issued"`
	SharesOutstanding int64  `csv:"shares_outstanding"`
	SharesReserved    int64  `csv:"shares_reserved"`
	ConsiderationPaid string `csv:"consideration_paid"`
	VotingPower       string `csv:"voting_power"`
}
