package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/alpacahq/goregistry/utils/initializer"
)

func init() {
	initializer.Initialize()
}

func main() {
	f, err := os.Create("cpu.prof")
	if err != nil {
		panic(err)
	}

	if err = pprof.StartCPUProfile(f); err != nil {
		panic(err)
	}

	fmt.Println("profile started...")

	for i := 0; i < 1000; i++ {
		if i%10 == 0 {
			fmt.Printf("%v iterations...", i)
		}
		testFunc()
	}

	fmt.Println("done.")

	pprof.StopCPUProfile()

	f.Close()
}

// add your code to profile here
func testFunc() {
	// tx := db.RepeatableRead()

	// srv := captable.Service(classcache.GetClassCache()).WithTx(tx)

	// table, err := srv.GetCapTable()
	// if err != nil {
	// 	tx.Rollback()
	// 	panic(err)
	// }

	// for _, class := range table.Classes {
	// 	_ = class.SharesOutstanding
	// }

	// tx.Commit()
}
