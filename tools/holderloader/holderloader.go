package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/alpacahq/goregistry/service/shareholder"
	"github.com/gofrs/uuid"
	"gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "holderloader"
	app.Usage = "Create a single shareholder & load contact details from yaml file"
	app.ArgsUsage = "<yaml_file>"
	app.Flags = []cli.Flag{
		&cli.StringFlag{Name: "id,i"},
		&cli.StringFlag{Name: "data,d"},
		&cli.StringFlag{Name: "email,e"},
		&cli.StringFlag{Name: "name,n"},
		&cli.StringFlag{Name: "entity,t", Value: "individual"},
	}
	app.Action = func(c *cli.Context) (err error) {
		numArgs := 1
		yamlData := c.String("data")
		if yamlData != "" {
			numArgs = 0
		}
		if len(c.Args()) < numArgs {
			cli.ShowAppHelpAndExit(c, 0)
			return nil
		}
		if yamlData == "" {
			fileName := c.Args().Get(0)
			file, err := os.Open(fileName)
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}
			data, err := ioutil.ReadAll(file)
			if err != nil {
				return cli.NewExitError(err.Error(), 1)
			}
			yamlData = string(data)
		}
		patches := map[string]interface{}{}
		if err := yaml.Unmarshal([]byte(yamlData), &patches); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		email := c.String("email")
		var id uuid.UUID
		if email != "" {
			tx := db.Serializable()
			srv := shareholder.Service().WithTx(tx)

			holder, err := srv.Create(&models.Shareholder{
				EntityType: enum.EntityType(c.String("entity")),
				LegalName:  c.String("name"),
				Email:      &email,
			})
			if err != nil {
				tx.Rollback()
				return cli.NewExitError(err.Error(), 1)
			}
			tx.Commit()
			fmt.Printf("Shareholder: %v created\n", holder.ID)
			id = holder.IDAsUUID()
		} else {
			id, err = uuid.FromString(c.String("id"))
		}
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		if len(patches) > 0 {
			tx := db.Serializable()
			srv := shareholder.Service().WithTx(tx)

			if _, err = srv.Patch(id, patches); err != nil {
				tx.Rollback()
				return cli.NewExitError(err.Error(), 1)
			}
			tx.Commit()
			fmt.Printf("%v\n", patches)
		}

		return nil
	}

	app.Run(os.Args)
}
