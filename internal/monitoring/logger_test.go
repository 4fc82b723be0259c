package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	origLogf, origWarnf, origDebugf := Logf, Warnf, Debugf
	defer func() { Logf, Warnf, Debugf = origLogf, origWarnf, origDebugf }()

	var got []string
	SetLogger(func(format string, v ...interface{}) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	Logf("info %d", 1)
	Warnf("warn %d", 2)
	Debugf("debug %d", 3)

	if len(got) != 3 || got[1] != "warn 2" {
		t.Fatalf("captured %v", got)
	}

	got = nil
	SetLogger(nil)
	Logf("muted")
	Warnf("muted")
	if len(got) != 0 {
		t.Errorf("nil logger still captured %v", got)
	}
}

func TestInit(t *testing.T) {
	origLogf, origWarnf, origDebugf := Logf, Warnf, Debugf
	defer func() { Logf, Warnf, Debugf = origLogf, origWarnf, origDebugf }()

	if err := Init("debug", "console"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Logf("hello %s", "zap")

	if err := Init("loud", "json"); err == nil {
		t.Error("expected error for bad level")
	}
	if err := Init("info", "xml"); err == nil {
		t.Error("expected error for bad format")
	}
}
