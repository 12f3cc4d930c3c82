package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
)

// GCS stores report artifacts as objects in a Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSOption configures a GCS store
type GCSOption func(*GCS)

// WithObjectPrefix sets the object name prefix under the bucket
func WithObjectPrefix(prefix string) GCSOption {
	return func(x *GCS) {
		x.prefix = prefix
	}
}

// NewGCS creates a GCS artifact store using application default credentials
func NewGCS(ctx context.Context, bucket string, opts ...GCSOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	x := &GCS{client: client, bucket: bucket}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// Store uploads the artifact and returns its gs:// URL. The object only
// becomes visible when the upload completes.
func (x *GCS) Store(ctx context.Context, artifact *model.Artifact) (model.ArtifactID, error) {
	name, err := objectPath(x.prefix, artifact)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := x.client.Bucket(x.bucket).Object(name).NewWriter(ctx)
	w.ContentType = artifact.MimeType
	w.Metadata = map[string]string{"generator": "usersreport"}

	if _, err := w.Write(artifact.Contents); err != nil {
		// cancelling ctx aborts the upload
		cancel()
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write object", goerr.V("bucket", x.bucket), goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize object", goerr.V("bucket", x.bucket), goerr.V("object", name))
	}

	logging.From(ctx).Debug("Artifact uploaded", "bucket", x.bucket, "object", name, "size", len(artifact.Contents))
	return model.ArtifactID(fmt.Sprintf("gs://%s/%s", x.bucket, name)), nil
}

// Close releases the storage client
func (x *GCS) Close() error {
	if err := x.client.Close(); err != nil {
		return goerr.Wrap(err, "failed to close storage client")
	}
	return nil
}
