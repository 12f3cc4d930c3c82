package storage_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	reportstorage "github.com/secmon-lab/usersreport/pkg/service/storage"
)

func newArtifact(dest string) *model.Artifact {
	return &model.Artifact{
		Name:        "2024-06-30-UsersReport.csv",
		MimeType:    model.MimeTypeCSV,
		Contents:    []byte("Internal ID,Name\n1,Ada Lovelace\n"),
		Destination: dest,
	}
}

func TestLocal_Store(t *testing.T) {
	ctx := context.Background()

	t.Run("writes artifact under destination", func(t *testing.T) {
		root := t.TempDir()
		store, err := reportstorage.NewLocal(root)
		gt.NoError(t, err).Required()

		id, err := store.Store(ctx, newArtifact("reports/weekly"))
		gt.NoError(t, err).Required()

		path := filepath.Join(root, "reports", "weekly", "2024-06-30-UsersReport.csv")
		gt.Value(t, id).Equal(model.ArtifactID("file://" + filepath.ToSlash(path)))

		data, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal("Internal ID,Name\n1,Ada Lovelace\n")
	})

	t.Run("overwrites an existing artifact", func(t *testing.T) {
		root := t.TempDir()
		store, err := reportstorage.NewLocal(root)
		gt.NoError(t, err).Required()

		_, err = store.Store(ctx, newArtifact("reports"))
		gt.NoError(t, err).Required()

		second := newArtifact("reports")
		second.Contents = []byte("replaced")
		_, err = store.Store(ctx, second)
		gt.NoError(t, err).Required()

		data, err := os.ReadFile(filepath.Join(root, "reports", "2024-06-30-UsersReport.csv"))
		gt.NoError(t, err).Required()
		gt.Value(t, string(data)).Equal("replaced")

		entries, err := os.ReadDir(filepath.Join(root, "reports"))
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1)
	})

	t.Run("destination escaping the root is rejected", func(t *testing.T) {
		store, err := reportstorage.NewLocal(t.TempDir())
		gt.NoError(t, err).Required()

		_, err = store.Store(ctx, newArtifact("../outside"))
		gt.Error(t, err).Is(reportstorage.ErrInvalidArtifact)
	})

	t.Run("name with separator is rejected", func(t *testing.T) {
		store, err := reportstorage.NewLocal(t.TempDir())
		gt.NoError(t, err).Required()

		artifact := newArtifact("reports")
		artifact.Name = "nested/report.csv"
		_, err = store.Store(ctx, artifact)
		gt.Error(t, err).Is(reportstorage.ErrInvalidArtifact)
	})

	t.Run("empty root is rejected", func(t *testing.T) {
		_, err := reportstorage.NewLocal("")
		gt.Value(t, err).NotNil()
	})
}

func TestGCS_Store(t *testing.T) {
	bucket := os.Getenv("TEST_GCS_BUCKET")
	if bucket == "" {
		t.Skip("TEST_GCS_BUCKET is not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test/%d", time.Now().UnixNano())
	store, err := reportstorage.NewGCS(ctx, bucket, reportstorage.WithObjectPrefix(prefix))
	gt.NoError(t, err).Required()
	defer func() { gt.NoError(t, store.Close()) }()

	id, err := store.Store(ctx, newArtifact("reports"))
	gt.NoError(t, err).Required()

	object := prefix + "/reports/2024-06-30-UsersReport.csv"
	gt.Value(t, id).Equal(model.ArtifactID("gs://" + bucket + "/" + object))

	client, err := storage.NewClient(ctx)
	gt.NoError(t, err).Required()
	defer func() { _ = client.Close() }()

	obj := client.Bucket(bucket).Object(object)
	t.Cleanup(func() { _ = obj.Delete(context.Background()) })

	attrs, err := obj.Attrs(ctx)
	gt.NoError(t, err).Required()
	gt.Value(t, attrs.ContentType).Equal(model.MimeTypeCSV)
	gt.Bool(t, strings.HasSuffix(attrs.Name, ".csv")).True()
}
