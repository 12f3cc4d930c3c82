package model

// MimeTypeCSV is the content type of the report artifact
const MimeTypeCSV = "text/csv"

// ArtifactID identifies a stored artifact (object URL, file path, ...)
type ArtifactID string

// String returns the string representation of ArtifactID
func (x ArtifactID) String() string {
	return string(x)
}

// Artifact is a file handed to the artifact store
type Artifact struct {
	Name     string
	MimeType string
	Contents []byte

	// Destination is the opaque folder identifier the artifact is stored under
	Destination string
}
