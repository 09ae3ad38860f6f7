// Package s3man wraps the S3 operations the register needs for its
// books and records copies - nightly database backups, registrar file
// archives and cap-table snapshot exports.
package s3man

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alpacahq/gopaca/env"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type Manager struct {
	session    *session.Session
	bucketName string
	namespace  string
}

// New builds a Manager from the AWS environment variables. The
// namespace prefixes every key, so dev and prod can share a bucket.
func New() *Manager {
	region := "us-east-1"

	sess, _ := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(
			env.GetVar("AWS_ACCESS_KEY_ID"),
			env.GetVar("AWS_SECRET_ACCESS_KEY"),
			""),
		Region: &region,
	})

	return &Manager{
		session:    sess,
		bucketName: env.GetVar("AWS_S3_BUCKETNAME"),
		namespace:  strings.TrimSuffix(env.GetVar("AWS_S3_NAMESPACE"), "/"),
	}
}

// Upload writes an object under the namespaced path.
func (m *Manager) Upload(file io.ReadSeeker, path string) error {
	uploader := s3manager.NewUploader(m.session)

	_, err := uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(m.bucketName),
		Key:    aws.String(m.namespace + path),
		Body:   file,
	})

	return err
}

// DownloadDirectory copies every object under the remote prefix into
// the local directory, recreating the key hierarchy on disk.
func (m *Manager) DownloadDirectory(local, remote string) error {
	svc := s3.New(m.session)

	query := &s3.ListObjectsV2Input{
		Bucket: &m.bucketName,
		Prefix: &remote,
	}

	for {
		resp, err := svc.ListObjectsV2(query)
		if err != nil {
			return err
		}

		for _, obj := range resp.Contents {
			if err := m.downloadObject(svc, local, *obj.Key); err != nil {
				return err
			}
		}

		if !*resp.IsTruncated {
			return nil
		}
		query.ContinuationToken = resp.NextContinuationToken
	}
}

func (m *Manager) downloadObject(svc *s3.S3, local, key string) error {
	// keys ending in / are directory placeholders
	if strings.HasSuffix(key, "/") {
		return nil
	}

	dest := filepath.Join(local, key)

	if err := os.MkdirAll(filepath.Dir(dest), 0775); err != nil {
		return err
	}

	out, err := svc.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(m.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return err
	}
	defer out.Body.Close()

	destFile, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, out.Body)
	return err
}
