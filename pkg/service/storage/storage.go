package storage

import (
	"errors"
	"path"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
)

// ErrInvalidArtifact is returned when an artifact cannot be stored as given
var ErrInvalidArtifact = errors.New("invalid artifact")

// objectPath joins prefix, destination and artifact name into a slash
// separated relative path. Destinations that escape the prefix are rejected.
func objectPath(prefix string, artifact *model.Artifact) (string, error) {
	if artifact == nil || artifact.Name == "" {
		return "", goerr.Wrap(ErrInvalidArtifact, "artifact name is required")
	}
	if strings.ContainsAny(artifact.Name, `/\`) {
		return "", goerr.Wrap(ErrInvalidArtifact, "artifact name must not contain a path separator",
			goerr.V("name", artifact.Name))
	}

	dest := strings.Trim(strings.ReplaceAll(artifact.Destination, `\`, "/"), "/")
	for _, elem := range strings.Split(dest, "/") {
		if elem == ".." {
			return "", goerr.Wrap(ErrInvalidArtifact, "destination must not leave the storage root",
				goerr.V("destination", artifact.Destination))
		}
	}

	p := path.Join(strings.Trim(prefix, "/"), dest, artifact.Name)
	return strings.TrimPrefix(p, "/"), nil
}
