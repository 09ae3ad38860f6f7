package main

import (
	"flag"
	"fmt"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/grreg"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/utils/initializer"
)

func main() {
	initializer.Initialize()

	adminID := flag.String("admin_id", "", "administrator id")

	flag.Parse()

	tx := db.Begin()

	var admin models.Administrator

	if err := tx.Where("id = ?", adminID).Find(&admin).Error; err != nil {
		panic(err)
	}

	srv := grreg.Services().AccessKey().WithTx(tx)

	akey, err := srv.Create(admin.IDAsUUID())
	if err != nil {
		panic(err)
	}

	tx.Commit()

	fmt.Println("Generation Success")
	fmt.Println("APCA-API-KEY-ID", akey.ID)
	fmt.Println("APCA-API-SECRET-KEY", akey.Secret)
}
