package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestOSFileSystem(t *testing.T) {
	fsys := OSFileSystem{}
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "file.txt")

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := fsys.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if !fsys.Exists(path) {
		t.Error("Exists() = false after WriteFile")
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("ReadFile() = %q, want %q", data, "hello")
	}
	info, err := fsys.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if info.Size() != 5 {
		t.Errorf("Size() = %d, want 5", info.Size())
	}
}

func TestMemoryFileSystem(t *testing.T) {
	fsys := NewMemoryFileSystem()

	if _, err := fsys.ReadFile("missing.json"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile(missing) error = %v, want ErrNotExist", err)
	}
	if fsys.Exists("missing.json") {
		t.Error("Exists(missing) = true")
	}

	if err := fsys.WriteFile("a/b.json", []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := fsys.ReadFile("a/./b.json")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("ReadFile() = %q", data)
	}

	// Mutating the returned slice must not affect the stored file.
	data[0] = 'x'
	again, _ := fsys.ReadFile("a/b.json")
	if string(again) != "{}" {
		t.Errorf("stored data was mutated: %q", again)
	}

	if err := fsys.MkdirAll("out/reports", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	info, err := fsys.Stat("out")
	if err != nil || !info.IsDir() {
		t.Errorf("Stat(out) = %v, %v; want directory", info, err)
	}
}

func TestReadWriteJSON(t *testing.T) {
	type doc struct {
		Name  string    `json:"name"`
		Value []float64 `json:"value"`
	}
	fsys := NewMemoryFileSystem()

	in := doc{Name: "Ctrl+S", Value: []float64{1, 2}}
	if err := WriteJSON(fsys, "out/doc.json", in); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if !fsys.Exists("out") {
		t.Error("WriteJSON should create the parent directory")
	}

	var out doc
	if err := ReadJSON(fsys, "out/doc.json", &out); err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}
	if out.Name != in.Name || len(out.Value) != 2 {
		t.Errorf("ReadJSON() = %+v, want %+v", out, in)
	}

	if err := fsys.WriteFile("bad.json", []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ReadJSON(fsys, "bad.json", &out); err == nil {
		t.Error("ReadJSON(bad) should fail")
	}
	if err := ReadJSON(fsys, "nope.json", &out); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadJSON(missing) error = %v, want ErrNotExist", err)
	}
}
