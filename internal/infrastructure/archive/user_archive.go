// Package archive stores a JSON snapshot of every deleted user in Google Cloud Storage.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/domain/event"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/pkg/helpers"
)

// Uploader writes one object. UploadFunc adapts helpers.UploadObject.
type Uploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type UploadFunc func(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)

func (f UploadFunc) Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	return f(ctx, objectPath, contentType, r)
}

// GCSUploader uploads into a single bucket.
func GCSUploader(client *storage.Client, bucket string) Uploader {
	return UploadFunc(func(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error) {
		return helpers.UploadObject(ctx, client, bucket, objectPath, contentType, r)
	})
}

type UserArchive struct {
	up     Uploader
	prefix string
}

func NewUserArchive(up Uploader) *UserArchive {
	return &UserArchive{up: up, prefix: "deleted-users"}
}

// ObjectPath is deleted-users/<yyyy>/<mm>/<user id>/<event id>.json.
func (a *UserArchive) ObjectPath(e event.UserDeleted) string {
	return path.Join(a.prefix, e.DeletedAt.UTC().Format("2006/01"), e.AggregateID, e.ID+".json")
}

func (a *UserArchive) Archive(ctx context.Context, e event.UserDeleted) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := a.up.Upload(ctx, a.ObjectPath(e), "application/json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("upload %s: %w", a.ObjectPath(e), err)
	}
	return nil
}
