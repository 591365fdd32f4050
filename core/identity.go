package core

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"

	"github.com/google/uuid"
)

// Checksum streams r through SHA-256 and returns the hex digest.
func Checksum(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ChecksumFile returns the hex SHA-256 digest of the file at path.
// Memory use is bounded regardless of file size.
func ChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Checksum(f)
}

// ContentID is the content-addressed identifier of an archived document.
// It is a UUIDv5 over (archivedPath, checksum): byte-identical content at the
// same archive path always maps to the same ID, and new content gets a new one.
//
// An empty checksum (the file vanished before it could be hashed) degrades to
// hashing the path alone, so re-ingestion at that path is no longer content-aware.
func ContentID(archivedPath, checksum string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(archivedPath+"|"+checksum)).String()
}

// PathID is the path-addressed identifier used for live documents. Edits to the
// file revise the same index entry.
func PathID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String()
}

// NormalizeID returns raw in canonical UUID form. Anything that does not parse
// as a UUID is mapped through PathID; an empty raw falls back to fallback.
func NormalizeID(raw, fallback string) string {
	if raw == "" {
		raw = fallback
	}
	if id, err := uuid.Parse(raw); err == nil {
		return id.String()
	}
	return PathID(raw)
}
