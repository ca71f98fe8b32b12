package database

import (
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestMigrationsAreVersionedGooseFiles(t *testing.T) {
	files, err := fs.Glob(Migrations(), "*.sql")
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(files) == 0 {
		t.Fatal("no migrations embedded")
	}

	for i, name := range files {
		if prefix := fmt.Sprintf("%05d_", i+1); !strings.HasPrefix(name, prefix) {
			t.Errorf("migration %q out of sequence, want prefix %s", name, prefix)
		}
		body, err := fs.ReadFile(Migrations(), name)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", name, err)
		}
		text := string(body)
		up := strings.Index(text, "-- +goose Up")
		down := strings.Index(text, "-- +goose Down")
		if up != 0 || down < up {
			t.Errorf("%s: want a leading Up section followed by a Down section", name)
		}
	}
}
