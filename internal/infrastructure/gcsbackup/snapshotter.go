// Package gcsbackup copies the users document to Google Cloud Storage after
// every write.
package gcsbackup

import (
	"bytes"
	"context"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cohesia-portal/pkg/helpers"
)

// Uploader abstracts the object write so the naming scheme can be tested
// without a bucket.
type Uploader func(ctx context.Context, objectPath string, data []byte) (string, error)

// Snapshotter writes a timestamped object plus a "latest" copy for each
// snapshot: <prefix>/<name>/<RFC3339 UTC>.json and <prefix>/<name>/latest.json.
type Snapshotter struct {
	Prefix string
	Logger *logrus.Logger

	upload Uploader
	now    func() time.Time
}

// New returns a Snapshotter that writes into bucket via client.
func New(client *storage.Client, bucket, prefix string, logger *logrus.Logger) *Snapshotter {
	up := func(ctx context.Context, objectPath string, data []byte) (string, error) {
		return helpers.UploadObject(ctx, client, bucket, objectPath, "application/json", bytes.NewReader(data))
	}
	return NewWithUploader(up, prefix, logger)
}

func NewWithUploader(up Uploader, prefix string, logger *logrus.Logger) *Snapshotter {
	return &Snapshotter{Prefix: strings.Trim(prefix, "/"), Logger: logger, upload: up, now: time.Now}
}

func (s *Snapshotter) Snapshot(ctx context.Context, name string, data []byte) error {
	base := strings.TrimSuffix(name, path.Ext(name))
	dir := path.Join(s.Prefix, base)
	stamp := s.now().UTC().Format("20060102T150405.000Z")

	uri, err := s.upload(ctx, path.Join(dir, stamp+".json"), data)
	if err != nil {
		return err
	}
	if _, err := s.upload(ctx, path.Join(dir, "latest.json"), data); err != nil {
		return err
	}
	helpers.LogInfo(s.Logger, "users snapshot stored", logrus.Fields{"object": uri, "bytes": len(data)})
	return nil
}
