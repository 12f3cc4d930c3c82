package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/utils/logging"
	"github.com/secmon-lab/usersreport/pkg/utils/safe"
)

// Local stores report artifacts under a directory on the local file system
type Local struct {
	root string
}

// NewLocal creates a Local store rooted at dir. The directory is created if missing.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, goerr.New("root directory is required")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve root directory", goerr.V("dir", dir))
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, goerr.Wrap(err, "failed to create root directory", goerr.V("dir", abs))
	}

	return &Local{root: abs}, nil
}

// Store writes the artifact through a temporary file and renames it into
// place, so a failed write leaves no partial artifact.
func (x *Local) Store(ctx context.Context, artifact *model.Artifact) (model.ArtifactID, error) {
	rel, err := objectPath("", artifact)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(x.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return "", goerr.Wrap(err, "failed to create destination directory", goerr.V("path", dst))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".usersreport-*")
	if err != nil {
		return "", goerr.Wrap(err, "failed to create temporary file", goerr.V("path", dst))
	}
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(artifact.Contents); err != nil {
		safe.Close(ctx, tmp)
		return "", goerr.Wrap(err, "failed to write artifact", goerr.V("path", dst))
	}
	if err := tmp.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to close artifact", goerr.V("path", dst))
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", goerr.Wrap(err, "failed to move artifact into place", goerr.V("path", dst))
	}

	logging.From(ctx).Debug("Artifact written", "path", dst, "size", len(artifact.Contents))
	return model.ArtifactID("file://" + filepath.ToSlash(dst)), nil
}
