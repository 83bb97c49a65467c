// Package fileid provides the IDs detection results are stored under: a deterministic
// one for files on disk and a random one for uploads that have no path.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	filePrefix   = "file:"
	uploadPrefix = "upload:"
)

// FileID returns a stable result ID for the given absolute path.
// Same path always yields the same ID, so a rescan replaces the earlier result.
func FileID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return filePrefix + hex.EncodeToString(hash[:])
}

// UploadID returns a fresh ID for a result that has no backing file.
func UploadID() string {
	return uploadPrefix + uuid.NewString()
}

// IsUpload reports whether id was produced by UploadID.
func IsUpload(id string) bool {
	return strings.HasPrefix(id, uploadPrefix)
}
