package packet

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// BaseColumns lead every row regardless of kind.
var BaseColumns = []string{"timestamp", "session_uid", "session_time", "frame_id", "car_index"}

var wheelSuffixes = [4]string{"rl", "rr", "fl", "fr"}

type column struct {
	name  string
	field int
	elem  int // array element, -1 for scalars
}

type schema struct {
	names   []string
	columns []column
}

var schemas = map[Kind]schema{}

func init() {
	for _, b := range []Body{
		&Motion{}, &Session{}, &LapData{}, &Event{}, &Participant{}, &CarSetup{},
		&CarTelemetry{}, &CarStatus{}, &FinalClassification{}, &CarDamage{}, &MotionEx{},
	} {
		schemas[b.Kind()] = buildSchema(reflect.TypeOf(b).Elem())
	}
}

func buildSchema(t reflect.Type) schema {
	var s schema
	s.names = append(s.names, BaseColumns...)
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("col")
		if !f.IsExported() || tag == "" || tag == "-" {
			continue
		}
		name, opt, _ := strings.Cut(tag, ",")
		if f.Type.Kind() != reflect.Array {
			s.columns = append(s.columns, column{name: name, field: i, elem: -1})
			continue
		}
		for j := range f.Type.Len() {
			suffix := fmt.Sprint(j + 1)
			if opt == "wheels" && f.Type.Len() == len(wheelSuffixes) {
				suffix = wheelSuffixes[j]
			}
			s.columns = append(s.columns, column{name: name + "_" + suffix, field: i, elem: j})
		}
	}
	for _, c := range s.columns {
		s.names = append(s.names, c.name)
	}
	return s
}

// Columns returns the ordered column names of rows produced for kind k, or
// nil if k has no body decoder.
func Columns(k Kind) []string {
	s, ok := schemas[k]
	if !ok {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Row flattens the sample into values ordered as Columns(s.Kind). Numeric
// values keep their wire width; enum types are reduced to their number.
func (s CarSample) Row() []any {
	sch := schemas[s.Kind]
	row := make([]any, 0, len(sch.names))
	row = append(row,
		unixSeconds(s.Received),
		s.SessionUID,
		s.SessionTime,
		s.FrameID,
		s.CarIndex,
	)
	if s.Body == nil {
		return row
	}
	v := reflect.ValueOf(s.Body).Elem()
	for _, c := range sch.columns {
		f := v.Field(c.field)
		if c.elem >= 0 {
			f = f.Index(c.elem)
		}
		row = append(row, scalar(f))
	}
	return row
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}

func scalar(v reflect.Value) any {
	switch v.Kind() {
	case reflect.Uint8:
		return uint8(v.Uint())
	case reflect.Uint16:
		return uint16(v.Uint())
	case reflect.Uint32:
		return uint32(v.Uint())
	case reflect.Uint64:
		return v.Uint()
	case reflect.Int8:
		return int8(v.Int())
	case reflect.Int16:
		return int16(v.Int())
	case reflect.Int32:
		return int32(v.Int())
	case reflect.Int64:
		return v.Int()
	case reflect.Float32:
		return float32(v.Float())
	case reflect.Float64:
		return v.Float()
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return v.Bool()
	}
	return v.Interface()
}
