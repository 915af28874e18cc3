// Package session persists per-image view settings and the recently opened
// files list in a BoltDB database.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	dbFileName       = "hdrview_session.db"
	ViewStatesBucket = "ViewStates" // image path -> JSON ViewState
	RecentBucket     = "Recent"     // image path -> RFC3339 time of last open
)

// ErrNotFound is returned when no view state is stored for a path.
var ErrNotFound = errors.New("no saved view state")

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// ViewState is what gets restored when an image is reopened.
type ViewState struct {
	Exposure  float32 `json:"exposure"`
	Gamma     float32 `json:"gamma"`
	SRGB      bool    `json:"srgb"`
	ZoomLevel float32 `json:"zoom_level"`
	OffsetX   float32 `json:"offset_x"`
	OffsetY   float32 `json:"offset_y"`
	Channel   string  `json:"channel,omitempty"`
}

// RecentFile is an entry of the recent files list.
type RecentFile struct {
	Path   string
	Opened time.Time
}

// Store manages the session database.
type Store struct {
	db     *bolt.DB
	logger LoggerFunc
}

// Open creates or opens the session database in dbDir. An empty dbDir selects
// an "hdrview" folder in the user config directory.
func Open(dbDir string, logger LoggerFunc) (*Store, error) {
	if dbDir == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			log.Printf("Warning: Could not get user config dir: %v. Using current dir.", err)
			dbDir = "."
		} else {
			dbDir = filepath.Join(configDir, "hdrview")
		}
	}
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create config directory %s: %w", dbDir, err)
	}

	dbPath := filepath.Join(dbDir, dbFileName)
	if logger != nil {
		logger(fmt.Sprintf("Using session database at: %s", dbPath))
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{ViewStatesBucket, RecentBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) logMessage(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.db.Path()
}

// SaveViewState stores vs for imagePath, replacing any previous state.
func (s *Store) SaveViewState(imagePath string, vs ViewState) error {
	if imagePath == "" {
		return errors.New("image path required")
	}
	data, err := json.Marshal(vs)
	if err != nil {
		return fmt.Errorf("failed to encode view state for %s: %w", imagePath, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(ViewStatesBucket)).Put([]byte(imagePath), data)
	})
}

// ViewState returns the stored state for imagePath, or ErrNotFound.
func (s *Store) ViewState(imagePath string) (ViewState, error) {
	var vs ViewState
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(ViewStatesBucket)).Get([]byte(imagePath))
		if data == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(data, &vs); err != nil {
			return fmt.Errorf("failed to decode view state for %s: %w", imagePath, err)
		}
		return nil
	})
	return vs, err
}

// DeleteViewState removes the stored state for imagePath. Missing entries are not an error.
func (s *Store) DeleteViewState(imagePath string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(ViewStatesBucket)).Delete([]byte(imagePath))
	})
}

// Paths returns every image path with a stored view state, sorted.
func (s *Store) Paths() ([]string, error) {
	var paths []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(ViewStatesBucket)).ForEach(func(k, _ []byte) error {
			paths = append(paths, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list view states: %w", err)
	}
	sort.Strings(paths)
	return paths, nil
}

// TouchRecent records that imagePath was opened at t.
func (s *Store) TouchRecent(imagePath string, t time.Time) error {
	if imagePath == "" {
		return errors.New("image path required")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(RecentBucket)).Put([]byte(imagePath), []byte(t.UTC().Format(time.RFC3339Nano)))
	})
}

// RecentFiles returns up to limit entries, most recent first. limit <= 0
// returns all of them. Entries with an unreadable time are skipped.
func (s *Store) RecentFiles(limit int) ([]RecentFile, error) {
	var files []RecentFile
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(RecentBucket)).ForEach(func(k, v []byte) error {
			t, err := time.Parse(time.RFC3339Nano, string(v))
			if err != nil {
				s.logMessage("Skipping recent entry %s: %v", k, err)
				return nil
			}
			files = append(files, RecentFile{Path: string(k), Opened: t})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent files: %w", err)
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Opened.After(files[j].Opened)
	})
	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}
	return files, nil
}

// Clean removes view states and recent entries whose path no longer passes
// exists. It returns the number of distinct paths removed.
func (s *Store) Clean(exists func(path string) bool) (int, error) {
	removed := map[string]bool{}
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{ViewStatesBucket, RecentBucket} {
			b := tx.Bucket([]byte(name))
			var stale [][]byte
			if err := b.ForEach(func(k, _ []byte) error {
				if !exists(string(k)) {
					stale = append(stale, append([]byte(nil), k...))
				}
				return nil
			}); err != nil {
				return err
			}
			// Keys are deleted after iteration; bbolt cursors do not allow
			// deletion during ForEach.
			for _, k := range stale {
				if err := b.Delete(k); err != nil {
					return fmt.Errorf("failed to delete %s from %s: %w", k, name, err)
				}
				removed[string(k)] = true
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	for p := range removed {
		s.logMessage("Removed session data for missing file %s", p)
	}
	return len(removed), nil
}
