package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestMemoryFileSystem(t *testing.T) {
	m := NewMemoryFileSystem()
	w, err := m.Create("out/./race.ini")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.ReadFile("out/race.ini"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("file visible before Close: %v", err)
	}
	w.Write([]byte("[RACE_PARS]"))
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	got, err := m.ReadFile("out/race.ini")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "[RACE_PARS]" {
		t.Errorf("ReadFile = %q", got)
	}
	if files := m.Files(); len(files) != 1 || files[0] != filepath.Clean("out/race.ini") {
		t.Errorf("Files = %v", files)
	}
}

func TestOSFileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plots")
	var fsys FileSystem = OSFileSystem{}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	w, err := fsys.Create(filepath.Join(dir, "HAM.png"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	w.Write([]byte{0x89, 'P', 'N', 'G'})
	w.Close()
	got, err := fsys.ReadFile(filepath.Join(dir, "HAM.png"))
	if err != nil || len(got) != 4 {
		t.Errorf("ReadFile = %v, %v", got, err)
	}
}
