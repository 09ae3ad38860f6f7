package main

import (
	"encoding/json"
	"flag"
	"fmt"

	"github.com/alpacahq/gopaca/auth"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/goregistry/models"
)

var (
	key = flag.String("key", "", "access key id to inspect")
)

func init() {
	flag.Parse()
}

// Prints the cached auth entry for an access key next to the database
// row. A disabled key that still shows an active cache entry means the
// cache invalidation on revoke failed and the key must be flushed.
func main() {
	a, err := auth.Get(*key)
	if err != nil {
		panic(err)
	}

	buf, err := json.MarshalIndent(a, "", "    ")
	if err != nil {
		panic(err)
	}

	fmt.Println(string(buf))

	akey := &models.AccessKey{}

	q := db.DB().Where("id = ?", *key).Find(akey)

	if q.RecordNotFound() {
		fmt.Println("no database row for this key")
		return
	}

	if q.Error != nil {
		panic(q.Error)
	}

	fmt.Println("database status:", akey.Status)

	if string(akey.Status) != a.Status {
		fmt.Println("MISMATCH: cache and database disagree")
	}
}
