// Package oplog implements the Operation Log (spec §4.10): an append-only
// JSON-lines record of AI-initiated mutating operations, one file per day
// under <project>/.smart-tree/filehistory/. Grounded on the teacher's
// filelock.FileLock (gofrs/flock wrapper) for the append lock and the small
// explicit-struct style used throughout the teacher's persistence code; no
// teacher or pack file models an append-only audit log directly, so record
// shape follows spec §4.10 and §6.3 verbatim.
package oplog

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/smarttree/smarttree/internal/apperr"
)

// Record is one operation-log line (spec §4.10, §6.3).
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Agent     string    `json:"agent"`
	SessionID string    `json:"sessionId"`
	Operation string    `json:"operation"`
	Path      string    `json:"path"`
	OldHash   string    `json:"oldHash,omitempty"`
	NewHash   string    `json:"newHash,omitempty"`
	ByteDelta int64     `json:"byteDelta"`
}

// dirName is the fixed subpath under a project root that holds daily log
// files (spec §6.3).
const dirName = ".smart-tree/filehistory"

// pathForDay returns the log file path for the given project root and day.
func pathForDay(projectRoot string, day time.Time) string {
	return filepath.Join(projectRoot, dirName, day.Format("2006-01-02")+".log")
}

// Append writes rec as one JSON line to today's log file under projectRoot,
// creating the filehistory directory and file if needed. The write is
// wrapped in an flock-based exclusive lock so concurrent tool calls never
// interleave partial lines; the log itself is only ever appended to, never
// rewritten (spec §4.10).
func Append(projectRoot string, rec Record) error {
	path := pathForDay(projectRoot, rec.Timestamp)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperr.Wrap(apperr.IOError, err, "creating operation log directory for %s", path)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return apperr.Wrap(apperr.IOError, err, "acquiring operation log lock for %s", path)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return apperr.Wrap(apperr.IOError, err, "opening operation log %s", path)
	}
	defer f.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return apperr.Wrap(apperr.IOError, err, "encoding operation log record")
	}
	line = append(line, '\n')

	if _, err := f.Write(line); err != nil {
		return apperr.Wrap(apperr.IOError, err, "appending to operation log %s", path)
	}
	return nil
}

// Read returns every record logged for projectRoot on day, in file order.
// A missing log file is not an error — no operations were recorded that
// day — and Read returns a nil slice.
func Read(projectRoot string, day time.Time) ([]Record, error) {
	path := pathForDay(projectRoot, day)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.IOError, err, "reading operation log %s", path)
	}

	var records []Record
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			break
		}
		records = append(records, rec)
	}
	return records, nil
}
