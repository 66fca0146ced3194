package lang

import (
	"errors"
	"os"
	"testing"
)

func TestModuleTableImportReturnsReaderAtStart(t *testing.T) {
	table := NewModuleTable()
	table.Loader = MapLoader{"m": []byte("int x = 1\n")}

	r, err := table.Import("m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Line() != 1 {
		t.Errorf("expected a fresh reader at line 1, got %d", r.Line())
	}
}

func TestModuleTableDoubleImportIsError(t *testing.T) {
	table := NewModuleTable()
	table.Loader = MapLoader{"m": []byte("int x = 1\n")}

	if _, err := table.Import("m"); err != nil {
		t.Fatalf("first import: unexpected error: %v", err)
	}
	_, err := table.Import("m")
	if !errors.Is(err, ErrDoubleImport) {
		t.Fatalf("second import: got %v, want ErrDoubleImport", err)
	}
}

func TestModuleTableInvalidNameIsError(t *testing.T) {
	table := NewModuleTable()
	table.Loader = MapLoader{}

	_, err := table.Import("")
	if !errors.Is(err, ErrInvalidModuleName) {
		t.Fatalf("got %v, want ErrInvalidModuleName", err)
	}
}

func TestModuleTableHasTracksImportedNames(t *testing.T) {
	table := NewModuleTable()
	table.Loader = MapLoader{"m": []byte("int x = 1\n")}

	if table.Has("m") {
		t.Fatal("Has should be false before import")
	}
	if _, err := table.Import("m"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !table.Has("m") {
		t.Fatal("Has should be true after import")
	}
}

func TestModuleTableNamesPreservesImportOrder(t *testing.T) {
	table := NewModuleTable()
	table.Loader = MapLoader{
		"a": []byte("int x = 1\n"),
		"b": []byte("int y = 2\n"),
	}
	if _, err := table.Import("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := table.Import("b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := table.Names()
	want := []string{"a", "b"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestModuleTableLineText(t *testing.T) {
	table := NewModuleTable()
	table.Loader = MapLoader{"m": []byte("first\nsecond\n")}
	if _, err := table.Import("m"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.LineText("m", 1); got != "first" {
		t.Errorf("LineText(1): got %q, want %q", got, "first")
	}
	if got := table.LineText("m", 2); got != "second" {
		t.Errorf("LineText(2): got %q, want %q", got, "second")
	}
	if got := table.LineText("missing", 1); got != "" {
		t.Errorf("LineText for an unimported module: got %q, want empty", got)
	}
}

func TestModuleTableBaseDirAnchorsRelativeNames(t *testing.T) {
	table := NewModuleTable()
	table.BaseDir = "/project/src"
	var requested string
	table.Loader = loaderFunc(func(name string) ([]byte, error) {
		requested = name
		return []byte("int x = 1\n"), nil
	})

	if _, err := table.Import("lib.ml"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requested != "/project/src/lib.ml" {
		t.Errorf("got loader request %q, want an absolute path under BaseDir", requested)
	}
}

func TestMapLoaderReturnsNotExistForMissingEntry(t *testing.T) {
	_, err := MapLoader{}.Load("missing")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("got %v, want a wrapped os.ErrNotExist", err)
	}
}

type loaderFunc func(name string) ([]byte, error)

func (f loaderFunc) Load(name string) ([]byte, error) { return f(name) }
