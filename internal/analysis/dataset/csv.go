package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/telemetry/packet"
)

// ErrNoData is returned when a source holds none of the analysed kinds.
var ErrNoData = errors.New("no telemetry rows found")

// csvFileFor picks the file for kind among names. Files are named
// <kind>_<YYYYMMDD_HHMMSS>.csv; when a directory holds several collections
// the latest stamp wins.
func csvFileFor(kind packet.Kind, names []string) string {
	prefix := kind.String() + "_"
	var match string
	for _, n := range names {
		if !strings.HasSuffix(n, ".csv") || !strings.HasPrefix(n, prefix) {
			continue
		}
		rest := n[len(prefix):]
		// session_ must not claim session_history_ and similar.
		if rest == "" || rest[0] < '0' || rest[0] > '9' {
			continue
		}
		if n > match {
			match = n
		}
	}
	return match
}

// LoadCSVDir reads the analysed kinds from a CSV output directory. A file
// that fails to parse is logged and skipped.
func LoadCSVDir(dir string) (*Dataset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	d := &Dataset{}
	for _, kind := range Kinds {
		name := csvFileFor(kind, names)
		if name == "" {
			monitoring.Debugf("no %s file in %s", kind, dir)
			continue
		}
		n, err := loadCSVFile(d, kind, filepath.Join(dir, name))
		if err != nil {
			monitoring.Warnf("skipping %s: %v", name, err)
			continue
		}
		monitoring.Logf("loaded %s: %d rows", name, n)
	}
	if d.Empty() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoData)
	}
	d.Sort()
	return d, nil
}

func loadCSVFile(d *Dataset, kind packet.Kind, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return 0, fmt.Errorf("read header: %w", err)
	}
	idx := Index(header)
	n := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		d.Add(kind, NewRecord(idx, rec))
		n++
	}
}
