package epub

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	shiori "github.com/go-shiori/go-epub"
)

func createEpub(n string) error {
	e, err := shiori.NewEpub("The Go Programming Language")
	if err != nil {
		return err
	}
	e.SetAuthor("Alan Donovan")
	e.SetDescription("An introduction to Go")
	return e.Write(n)
}

func withBook(t *testing.T, fn func(*Book)) {
	t.Helper()
	f := filepath.Join(t.TempDir(), "test.epub")
	if err := createEpub(f); err != nil {
		t.Fatal(err)
	}
	b, err := Open(f)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	fn(b)
}

func TestOpenRejectsNonEpubZip(t *testing.T) {
	f := filepath.Join(t.TempDir(), "fake.epub")
	fd, err := os.Create(f)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(fd)
	w, err := zw.Create("mimetype")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("text/plain")); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := fd.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(f); err == nil {
		t.Fatal("expected an error for a non-epub archive")
	}
	// The archive must be released on the failed open.
	if err := os.Remove(f); err != nil {
		t.Fatalf("archive still held open: %v", err)
	}
}

func TestOpen(t *testing.T) {
	withBook(t, func(b *Book) {
		if b.Mimetype != "application/epub+zip" {
			t.Errorf("invalid mimetype: %s", b.Mimetype)
		}
		if b.Container.Rootfile.Fullpath == "" {
			t.Error("empty rootfile path")
		}
	})
}

func TestFiles(t *testing.T) {
	withBook(t, func(b *Book) {
		if len(b.Files()) == 0 {
			t.Error("expected files in archive")
		}
	})
}

func TestMetadata(t *testing.T) {
	withBook(t, func(b *Book) {
		if got := b.GetTitle(); got != "The Go Programming Language" {
			t.Errorf("unexpected title: %q", got)
		}
		if got := b.GetAuthor(); got != "Alan Donovan" {
			t.Errorf("unexpected author: %q", got)
		}
		if got := b.GetDescription(); got != "An introduction to Go" {
			t.Errorf("unexpected description: %q", got)
		}
	})
}
