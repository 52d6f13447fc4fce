package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inodb/gbtranslate/internal/genbank"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// RecordCache manages gob-serialized GenBank records on disk, one pair of
// files per source file:
//
//	{dir}/{source}.records.gob       (parsed records)
//	{dir}/{source}.records.gob.meta  (source file fingerprint)
type RecordCache struct {
	dir  string
	name string
}

// NewRecordCache creates a record cache for the source file name inside dir.
func NewRecordCache(dir, source string) *RecordCache {
	return &RecordCache{dir: dir, name: filepath.Base(source)}
}

func (rc *RecordCache) gobPath() string {
	return filepath.Join(rc.dir, rc.name+".records.gob")
}

func (rc *RecordCache) metaPath() string {
	return rc.gobPath() + ".meta"
}

// Valid checks whether the cached records match the current source file.
func (rc *RecordCache) Valid(src FileFingerprint) bool {
	meta, err := rc.readMeta()
	if err != nil {
		return false
	}

	checks := []struct{ key, val string }{
		{"source_path", src.Path},
		{"source_size", strconv.FormatInt(src.Size, 10)},
		{"source_modtime", src.ModTime.UTC().Format(time.RFC3339Nano)},
	}

	for _, c := range checks {
		if meta[c.key] != c.val {
			return false
		}
	}

	// Verify gob file exists
	if _, err := os.Stat(rc.gobPath()); err != nil {
		return false
	}
	return true
}

// Load reads serialized records from disk.
func (rc *RecordCache) Load() ([]*genbank.Record, error) {
	f, err := os.Open(rc.gobPath())
	if err != nil {
		return nil, fmt.Errorf("open record cache: %w", err)
	}
	defer f.Close()

	var records []*genbank.Record
	if err := gob.NewDecoder(f).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode record cache: %w", err)
	}
	return records, nil
}

// Write serializes records to disk and records the source fingerprint.
func (rc *RecordCache) Write(records []*genbank.Record, src FileFingerprint) error {
	if err := os.MkdirAll(rc.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	f, err := os.Create(rc.gobPath())
	if err != nil {
		return fmt.Errorf("create record cache: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(records); err != nil {
		f.Close()
		os.Remove(rc.gobPath())
		return fmt.Errorf("encode record cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close record cache: %w", err)
	}

	return rc.writeMeta(src)
}

// Clear removes the cached record files.
func (rc *RecordCache) Clear() {
	os.Remove(rc.gobPath())
	os.Remove(rc.metaPath())
}

func (rc *RecordCache) writeMeta(src FileFingerprint) error {
	lines := []string{
		"source_path=" + src.Path,
		"source_size=" + strconv.FormatInt(src.Size, 10),
		"source_modtime=" + src.ModTime.UTC().Format(time.RFC3339Nano),
		"created_at=" + time.Now().UTC().Format(time.RFC3339),
		"",
	}
	return os.WriteFile(rc.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (rc *RecordCache) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(rc.metaPath())
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}

// LoadRecords returns the records of path, from the cache when it matches
// the file on disk and by parsing otherwise. A fresh parse refreshes the
// cache; a cache write failure is returned alongside the parsed records.
func LoadRecords(path, cacheDir string) ([]*genbank.Record, bool, error) {
	fp, err := StatFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}

	rc := NewRecordCache(cacheDir, path)
	if rc.Valid(fp) {
		if records, err := rc.Load(); err == nil {
			return records, true, nil
		}
		rc.Clear()
	}

	records, err := genbank.ReadAll(path)
	if err != nil {
		return nil, false, err
	}
	if err := rc.Write(records, fp); err != nil {
		return records, false, err
	}
	return records, false, nil
}
