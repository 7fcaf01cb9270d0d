package migration

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestFileScanner_ScanMigrations(t *testing.T) {
	t.Run("sorts by numeric version", func(t *testing.T) {
		files := fstest.MapFS{
			"sql/010_later.sql":    {Data: []byte("CREATE TABLE later (id INTEGER);")},
			"sql/002_second.sql":   {Data: []byte("-- Description: add second table\nCREATE TABLE second (id INTEGER);")},
			"sql/001_first.sql":    {Data: []byte("CREATE TABLE first (id INTEGER);")},
			"sql/README.md":        {Data: []byte("ignored")},
			"sql/nested/003_x.sql": {Data: []byte("CREATE TABLE x (id INTEGER);")},
		}
		migrations, err := NewFileScanner(files, "sql").ScanMigrations()
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		if len(migrations) != 3 {
			t.Fatalf("expected 3 migrations, got %d", len(migrations))
		}
		got := []string{migrations[0].Version, migrations[1].Version, migrations[2].Version}
		if got[0] != "001" || got[1] != "002" || got[2] != "010" {
			t.Fatalf("unexpected order %v", got)
		}
		if migrations[0].Description != "first" {
			t.Fatalf("expected description from filename, got %q", migrations[0].Description)
		}
		if migrations[1].Description != "add second table" {
			t.Fatalf("expected description from comment, got %q", migrations[1].Description)
		}
		if migrations[0].Checksum == "" || migrations[0].FilePath != "sql/001_first.sql" {
			t.Fatalf("unexpected metadata %+v", migrations[0])
		}
	})

	t.Run("rejects duplicate versions", func(t *testing.T) {
		files := fstest.MapFS{
			"001_a.sql":  {Data: []byte("SELECT 1;")},
			"0001_b.sql": {Data: []byte("SELECT 1;")},
		}
		_, err := NewFileScanner(files, ".").ScanMigrations()
		if !errors.Is(err, ErrDuplicateVersion) {
			t.Fatalf("expected ErrDuplicateVersion, got %v", err)
		}
	})

	t.Run("rejects malformed files", func(t *testing.T) {
		cases := map[string]string{
			"bad name.sql":   "SELECT 1;",
			"001_empty.sql":  "-- nothing here\n",
			"001_parens.sql": "CREATE TABLE t (id INTEGER;",
		}
		for name, body := range cases {
			t.Run(name, func(t *testing.T) {
				files := fstest.MapFS{name: {Data: []byte(body)}}
				_, err := NewFileScanner(files, ".").ScanMigrations()
				if !errors.Is(err, ErrInvalidMigrationFile) {
					t.Fatalf("expected ErrInvalidMigrationFile, got %v", err)
				}
			})
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := NewFileScanner(fstest.MapFS{}, "absent").ScanMigrations()
		if err == nil {
			t.Fatalf("expected error for missing directory")
		}
	})
}

func TestSplitStatements(t *testing.T) {
	sql := "-- header\nCREATE TABLE a (id INTEGER); -- trailing\n\n;CREATE INDEX idx ON a (id);\n"
	statements := splitStatements(sql)
	if len(statements) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(statements), statements)
	}
	if statements[0] != "CREATE TABLE a (id INTEGER)" {
		t.Fatalf("unexpected first statement %q", statements[0])
	}
}
