package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/igor-vendor/igor/igor"
)

func TestLocalReadAndList(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}

	l := Local{Dir: dir}

	entries, err := l.List("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sawFile, sawDir bool
	for _, e := range entries {
		switch e.Name {
		case "a.txt":
			sawFile = e.Kind == igor.KindFile
		case "sub":
			sawDir = e.Kind == igor.KindDir
		}
	}
	if !sawFile || !sawDir {
		t.Fatalf("expected to see a.txt as a file and sub as a directory, got %+v", entries)
	}

	data, err := l.Read("a.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("got %q", data)
	}
}

func TestLocalReadMissingFileErrors(t *testing.T) {
	l := Local{Dir: t.TempDir()}
	if _, err := l.Read("missing.txt"); err == nil {
		t.Fatal("expected an error reading a missing file")
	}
}

func TestParseOnIncoming(t *testing.T) {
	cases := map[string]OnIncoming{
		"":        OnIncomingUpdate,
		"update":  OnIncomingUpdate,
		"ignore":  OnIncomingIgnore,
		"warn":    OnIncomingWarn,
		"fail":    OnIncomingFail,
	}
	for in, want := range cases {
		got, err := ParseOnIncoming(in)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseOnIncoming(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseOnIncoming("bogus"); err == nil {
		t.Fatal("expected an error for an unrecognized policy")
	}
}
