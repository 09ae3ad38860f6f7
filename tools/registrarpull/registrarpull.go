package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"time"

	"github.com/alpacahq/goregistry/registrar/files"

	"github.com/alpacahq/gopaca/calendar"
	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/log"
	regworker "github.com/alpacahq/goregistry/workers/registrar"
)

var (
	dateFlag     = flag.String("date", clock.Now().Add(-24*time.Hour).Format("2006-01-02"), "Date to pull registrar files for")
	localDirFlag = flag.String("localDir", "", "local directory with registrar files")
	regFiles     = []files.RegFile{
		&files.PositionFile{},
	}
)

func init() {
	flag.Parse()

	clock.Set()
}

func main() {
	t, err := time.ParseInLocation("2006-01-02", *dateFlag, calendar.NY)
	if err != nil {
		t = clock.Now()
	}

	if *localDirFlag != "" {
		for _, file := range regFiles {
			dirName := fmt.Sprintf(
				"%v/download/%v/%v/",
				*localDirFlag,
				t.Format("20060102"),
				file.Code(),
			)

			fileInfos, err := ioutil.ReadDir(dirName)
			if err != nil {
				log.Warn("cannot read directory, skipping registrar file", "directory", dirName, "file_code", file.Code(), "error", err)
				continue
			}

			for _, fileInfo := range fileInfos {
				filePath := fmt.Sprintf("%v/%v", dirName, fileInfo.Name())
				buf, err := ioutil.ReadFile(filePath)
				if err != nil {
					log.Error("cannot read file, skipping registrar file", "error", err, "file", filePath, "file_code", file.Code())
					break
				}

				if err = files.Parse(buf, file); err != nil {
					log.Error("failed to parse registrar file", "error", err, "file_code", file.Code())
					break
				}

				processed, errors := file.Sync(t)

				log.Info("synced registrar file", "processed", processed, "errors", errors)
			}
		}
	} else {
		regworker.Work(t)
	}
}
