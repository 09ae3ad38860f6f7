// Package registrar reconciles the share register against the daily
// position files our external transfer agent drops over SFTP. The same
// processing path also backs the push endpoint agents that prefer
// HTTPS delivery use, so both routes archive, parse and sync
// identically.
package registrar

import (
	"bufio"
	"bytes"
	"fmt"
	"io/ioutil"
	"net"
	"path/filepath"
	"runtime"
	"time"

	"github.com/alpacahq/gopaca/clock"
	"github.com/alpacahq/gopaca/db"
	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	"github.com/alpacahq/goregistry/external/slack"
	"github.com/alpacahq/goregistry/models"
	"github.com/alpacahq/goregistry/registrar/files"
	"github.com/alpacahq/goregistry/s3man"
	"github.com/alpacahq/goregistry/utils"
	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

const (
	branch     = "APCA"
	dateFormat = "20060102"
)

type Processor struct {
	client *sftp.Client
	rsaKey ssh.Signer
	conn   ssh.Conn
}

func (p *Processor) loadRSA(file string) error {
	_, f, _, _ := runtime.Caller(0)
	dir, err := filepath.Abs(filepath.Dir(f))
	buf, err := ioutil.ReadFile(dir + "/keys/" + file)
	if err != nil {
		return err
	}
	key, err := ssh.ParsePrivateKey(buf)
	if err != nil {
		return err
	}
	p.rsaKey = key
	return nil
}

func (p *Processor) InitClient() (err error) {
	if p.client == nil {
		addr := env.GetVar("REGISTRAR_SFTP_HOST")
		err = p.loadRSA(env.GetVar("REGISTRAR_RSA"))
		if err != nil {
			log.Error("registrar file pull error", "action", "load rsa key", "error", err)
			return err
		}
		config := &ssh.ClientConfig{
			User: env.GetVar("REGISTRAR_SFTP_USER"),
			Auth: []ssh.AuthMethod{ssh.PublicKeys(p.rsaKey)},
			HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
				return nil
			},
		}
		conn, err := ssh.Dial("tcp", addr, config)
		if err != nil {
			log.Error("registrar file pull error", "action", "connect sftp", "error", err)
			return err
		}
		p.conn = conn
		p.client, err = sftp.NewClient(conn)
		if err != nil {
			p.conn.Close()
			log.Error("registrar file pull error", "action", "connect sftp", "error", err)
			return err
		}
	}
	return nil
}

func (p *Processor) Close() error {
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

func (p *Processor) Pull(asOf time.Time, retries uint) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("registrar processing recovered from panic", "retries", retries, "wait", time.Minute)
			<-time.After(time.Minute)
			if retries > 0 {
				p.client.Close()
				p.client = nil
				err = p.Pull(asOf, retries-1)
			} else {
				log.Error("failed to pull registrar files", "attempts", retries)
				return
			}
		}
	}()

	if utils.Dev() {
		return nil
	}

	if err := p.InitClient(); err != nil {
		return err
	}
	defer p.Close()

	log.Info("pulling registrar files", "asOf", asOf.Format("2006-01-02"))

	regFiles := []files.RegFile{
		&files.PositionFile{},
	}

	if err := p.ProcessFiles(asOf, regFiles); err != nil {
		return err
	}

	return p.notifySlack(asOf)
}

func (p *Processor) ProcessFiles(asOf time.Time, regFiles []files.RegFile) (err error) {
	date := asOf.Format(dateFormat)

	for _, file := range regFiles {

		dirName := fmt.Sprintf(
			"%v/%v/%v/",
			env.GetVar("REGISTRAR_REMOTE_DIR"),
			date,
			file.Code(),
		)

		data, _ := p.DownloadDir(dirName)

		if len(data) == 0 {
			log.Warn("registrar file is empty", "file", file.Code())
			continue
		}

		log.Info("downloaded registrar file", "file", file.Code())

		if _, err = p.ProcessFile(asOf, file, data); err != nil {
			return err
		}
	}
	return
}

// ProcessFile archives, parses and syncs a single registrar file.
// Shared by the SFTP pull and the push endpoint, so a file arriving
// over either route is handled the same way. The returned metric is
// what the push endpoint responds with.
func (p *Processor) ProcessFile(asOf time.Time, file files.RegFile, data []byte) (*models.BatchMetric, error) {
	if err := p.BackupFile(asOf, file, data); err != nil {
		// We can manually upload it later, so not skip processing.
		log.Error("registrar backup failure", "error", err)
	}

	start := clock.Now()
	if err := files.Parse(data, file); err != nil {
		return nil, err
	}

	log.Info(
		"parsed registrar file",
		"file", file.Code(),
		"elapsed", clock.Now().Sub(start),
	)

	log.Info("syncing registrar file", "file", file.Code())

	start = clock.Now()
	processed, errors := file.Sync(asOf)

	log.Info("synced registrar file", "file", file.Code())

	return p.storeMetric(
		file.Code(),
		asOf,
		clock.Now().Sub(start),
		processed,
		errors)
}

// BackupFile to s3 for books & records
func (p *Processor) BackupFile(asOf time.Time, file files.RegFile, data []byte) error {
	s3 := s3man.New()

	s3Path := fmt.Sprintf(
		"/registrar/download/%v/%v/%v.csv",
		asOf.Format(dateFormat),
		file.Code(),
		branch,
	)

	if err := s3.Upload(bytes.NewReader(data), s3Path); err != nil {
		return errors.Wrapf(err, "failed to upload %v to S3", file.Code())
	}

	return nil
}

func (p *Processor) DownloadDir(dir string) ([]byte, error) {
	fileInfos, err := p.client.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read dir info")
	}
	b := bytes.Buffer{}
	w := bufio.NewWriter(&b)
	// should only be one
	for _, fileInfo := range fileInfos {
		file, err := p.client.Open(dir + fileInfo.Name())
		if err != nil {
			return nil, errors.Wrap(err, "failed to open sftp file")
		}
		defer file.Close()
		_, err = file.WriteTo(w)
		if err != nil {
			return nil, errors.Wrap(err, "failed to write content to buffer")
		}
		err = w.Flush()
		if err != nil {
			return nil, errors.Wrap(err, "failed to flush the buffer")
		}
		break
	}
	return b.Bytes(), nil
}

func (p *Processor) storeMetric(code string, asOf time.Time, elapsed time.Duration, processed, errors uint) (*models.BatchMetric, error) {
	if errors > 0 {
		log.Error(
			"synced registrar file",
			"succeeded", processed,
			"errors", errors,
			"file", code,
			"elapsed", elapsed)
	} else {
		log.Info(
			"synced registrar file",
			"succeeded", processed,
			"errors", errors,
			"file", code,
			"elapsed", elapsed)
	}

	metric := &models.BatchMetric{
		ProcessDate:     asOf.Format("2006-01-02"),
		FileCode:        code,
		ProcessDuration: int(elapsed.Seconds()),
		RecordCount:     processed,
		ErrorCount:      errors,
	}
	tx := db.Begin()
	if err := tx.Where(
		&models.BatchMetric{
			ProcessDate: metric.ProcessDate,
			FileCode:    metric.FileCode}).
		Attrs(metric).
		FirstOrCreate(&metric).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	return metric, tx.Commit().Error
}

func (p *Processor) notifySlack(asOf time.Time) error {
	metrics := []models.BatchMetric{}
	db.DB().Where("process_date = ?", asOf.Format("2006-01-02")).Find(&metrics)

	msg := slack.NewBatchStatus()
	msg.SetBody(metrics)
	slack.Notify(msg)

	return nil
}
