package sink

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/pitwall/internal/telemetry/packet"
)

// CSV writes one file per packet kind, named <kind>_<YYYYMMDD_HHMMSS>.csv,
// each starting with a header row. Files are created on the first row of
// their kind.
type CSV struct {
	dir   string
	stamp string
	files map[packet.Kind]*csvFile
}

type csvFile struct {
	f    *os.File
	buf  *bufio.Writer
	w    *csv.Writer
	cols int
}

// NewCSV creates dir if needed. started stamps every file name of the run.
func NewCSV(dir string, started time.Time) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &CSV{
		dir:   dir,
		stamp: started.Format("20060102_150405"),
		files: make(map[packet.Kind]*csvFile),
	}, nil
}

// Path returns the file that rows of kind are written to.
func (c *CSV) Path(kind packet.Kind) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.csv", kind, c.stamp))
}

func (c *CSV) open(kind packet.Kind) (*csvFile, error) {
	if cf, ok := c.files[kind]; ok {
		return cf, nil
	}
	cols := packet.Columns(kind)
	if cols == nil {
		return nil, fmt.Errorf("no schema for %s", kind)
	}
	f, err := os.Create(c.Path(kind))
	if err != nil {
		return nil, fmt.Errorf("create %s csv: %w", kind, err)
	}
	buf := bufio.NewWriterSize(f, 64*1024)
	cf := &csvFile{f: f, buf: buf, w: csv.NewWriter(buf), cols: len(cols)}
	if err := cf.w.Write(cols); err != nil {
		f.Close()
		return nil, fmt.Errorf("write %s header: %w", kind, err)
	}
	c.files[kind] = cf
	return cf, nil
}

func (c *CSV) Append(kind packet.Kind, row []any) error {
	cf, err := c.open(kind)
	if err != nil {
		return err
	}
	if len(row) != cf.cols {
		return fmt.Errorf("%s row has %d values, schema has %d columns", kind, len(row), cf.cols)
	}
	rec := make([]string, len(row))
	for i, v := range row {
		rec[i] = FormatValue(v)
	}
	return cf.w.Write(rec)
}

func (c *CSV) Flush() error {
	var errs []error
	for kind, cf := range c.files {
		cf.w.Flush()
		if err := cf.w.Error(); err != nil {
			errs = append(errs, fmt.Errorf("flush %s: %w", kind, err))
			continue
		}
		if err := cf.buf.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("flush %s: %w", kind, err))
		}
	}
	return errors.Join(errs...)
}

func (c *CSV) Close() error {
	err := c.Flush()
	errs := []error{err}
	for kind, cf := range c.files {
		if err := cf.f.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", kind, err))
		}
		delete(c.files, kind)
	}
	return errors.Join(errs...)
}
