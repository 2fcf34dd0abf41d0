// Package imagestore persists images submitted as base64 data URIs to a
// local upload directory.
package imagestore

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrInvalidFormat is returned when the input is not a
// data:image/<subtype>;base64,<payload> URI.
var ErrInvalidFormat = errors.New("invalid image data URI")

// Store writes images into a single directory, created on demand.
type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string {
	return s.dir
}

// Save decodes a data URI and writes its payload to disk. The declared MIME
// subtype becomes the file extension verbatim. The generated filename keeps
// the human-readable timestamp but adds a random suffix so concurrent saves
// within the same second cannot clobber each other.
func (s *Store) Save(dataURI, prefix string) (string, error) {
	rest, ok := strings.CutPrefix(dataURI, "data:image/")
	if !ok {
		return "", ErrInvalidFormat
	}
	subtype, payload, ok := strings.Cut(rest, ";base64,")
	if !ok || subtype == "" {
		return "", ErrInvalidFormat
	}
	// the subtype lands in a filename; never let it escape the directory
	if strings.ContainsAny(subtype, `/\.`) {
		return "", ErrInvalidFormat
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("decode image payload: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.%s", prefix, time.Now().UTC().Format("20060102_150405"), randSuffix(), subtype)
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		return "", fmt.Errorf("write image file: %w", err)
	}

	return name, nil
}

// Remove deletes a previously saved file. Used as compensating cleanup when
// a database write fails after the image already landed on disk.
func (s *Store) Remove(filename string) error {
	if strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("invalid filename %q", filename)
	}
	return os.Remove(filepath.Join(s.dir, filename))
}

func randSuffix() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// fall back to a low-entropy suffix rather than failing the save
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xffffffff)
	}
	return hex.EncodeToString(b)
}
