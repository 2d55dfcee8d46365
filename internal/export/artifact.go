// Package export packages the workspace image and recognized text as
// downloadable artifacts.
package export

import (
	"time"

	"github.com/google/uuid"
)

// MIME types of the artifacts produced here.
const (
	MIMEDocument = "application/pdf"
	MIMEText     = "text/plain; charset=utf-8"
)

// Artifact is a packaged output ready for download.
type Artifact struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	MIMEType  string    `json:"mime_type"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Size returns the payload length in bytes.
func (a *Artifact) Size() int {
	return len(a.Data)
}

func newArtifact(filename, mime string, data []byte, now time.Time) *Artifact {
	return &Artifact{
		ID:        uuid.NewString(),
		Filename:  filename,
		MIMEType:  mime,
		Data:      data,
		CreatedAt: now,
	}
}
