package voicestore

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var audioExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".ogg": true,
}

// IsAudioFile reports whether name carries a supported audio extension.
// The check is suffix-only; content is never sniffed.
func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// Store is a flat-file store for reference uploads and speaker embeddings.
// Stable artifacts are named <voiceID>_<filename> and <voiceID>_embedding.pt;
// everything in flight lives under a per-request unique temp name and is
// promoted by rename only after a full write, so concurrent requests can
// never observe or clobber each other's partial files.
type Store struct {
	dir string
}

// New creates the upload directory if needed and returns a store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the upload directory path.
func (s *Store) Dir() string {
	return s.dir
}

// SaveUpload writes r to a temp file and promotes it to the stable
// <voiceID>_<filename> name, returning the stable path.
func (s *Store) SaveUpload(voiceID, filename string, r io.Reader) (string, error) {
	stable := s.UploadPath(voiceID, filename)
	tmp := s.TempPath("upload" + filepath.Ext(filename))

	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create temp upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("sync upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close upload: %w", err)
	}

	if err := os.Rename(tmp, stable); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("promote upload: %w", err)
	}
	return stable, nil
}

// UploadPath returns the stable path for a voice's reference upload.
func (s *Store) UploadPath(voiceID, filename string) string {
	return filepath.Join(s.dir, sanitize(voiceID)+"_"+sanitize(filename))
}

// EmbeddingPath returns the stable path for a voice's speaker embedding.
func (s *Store) EmbeddingPath(voiceID string) string {
	return filepath.Join(s.dir, sanitize(voiceID)+"_embedding.pt")
}

// HasEmbedding reports whether a speaker embedding exists for voiceID.
func (s *Store) HasEmbedding(voiceID string) bool {
	_, err := os.Stat(s.EmbeddingPath(voiceID))
	return err == nil
}

// PromoteEmbedding renames a freshly produced embedding file to its stable
// name. A rename across the same directory is atomic, so readers only ever
// see complete embeddings.
func (s *Store) PromoteEmbedding(tmpPath, voiceID string) (string, error) {
	stable := s.EmbeddingPath(voiceID)
	if err := os.Rename(tmpPath, stable); err != nil {
		return "", fmt.Errorf("promote embedding: %w", err)
	}
	return stable, nil
}

// TempPath returns a uuid-scoped path in the store for a transient artifact.
// The file is not created.
func (s *Store) TempPath(suffix string) string {
	return filepath.Join(s.dir, fmt.Sprintf(".tmp-%s-%s", uuid.New().String(), sanitize(suffix)))
}

// Remove deletes a file best-effort; failures are logged, never surfaced.
func (s *Store) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("[voicestore] cleanup failed for %s: %v", path, err)
	}
}

// sanitize strips path separators and other unsafe characters from a
// client-supplied name component.
func sanitize(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		}
		return '_'
	}, name)
}
