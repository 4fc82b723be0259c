// Package sink defines where accepted telemetry rows go.
package sink

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/banshee-data/pitwall/internal/telemetry/packet"
)

// Sink stores rows ordered as packet.Columns(kind). Sinks own file and
// table creation; Flush makes buffered rows durable and Close flushes and
// releases resources. Implementations are used from one goroutine.
type Sink interface {
	Append(kind packet.Kind, row []any) error
	Flush() error
	Close() error
}

// Multi fans rows out to every sink, continuing past individual failures.
type Multi []Sink

func (m Multi) Append(kind packet.Kind, row []any) error {
	var errs []error
	for _, s := range m {
		if err := s.Append(kind, row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Flush() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Flush())
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}

// Discard drops everything.
type Discard struct{}

func (Discard) Append(packet.Kind, []any) error { return nil }
func (Discard) Flush() error                    { return nil }
func (Discard) Close() error                    { return nil }

// FormatValue renders one row value as CSV text. Floats use the shortest
// representation that round-trips at their wire width.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	}
	return fmt.Sprint(v)
}
