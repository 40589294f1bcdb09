package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Dialects lists the subdirectories every schema change must ship in.
var Dialects = []string{"postgres", "sqlite"}

const versionLayout = "20060102150405"

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9]+`)

// migrationSlug turns a free-form name into the snake_case suffix of a file.
func migrationSlug(name string) (string, error) {
	slug := unsafeNameChars.ReplaceAllString(strings.ToLower(name), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	return slug, nil
}

// CreateSQLMigration writes an empty goose migration into dir and returns its path.
func CreateSQLMigration(dir, name string) (string, error) {
	paths, err := createVersioned(time.Now().UTC(), name, dir)
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// CreateForDialects writes the same version into base/<dialect> for every
// known dialect so the trees never drift apart.
func CreateForDialects(base, name string) ([]string, error) {
	dirs := make([]string, 0, len(Dialects))
	for _, dialect := range Dialects {
		dirs = append(dirs, DirFor(base, dialect))
	}
	return createVersioned(time.Now().UTC(), name, dirs...)
}

func createVersioned(now time.Time, name string, dirs ...string) ([]string, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("dir is required")
	}
	slug, err := migrationSlug(name)
	if err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("%s_%s.sql", now.Format(versionLayout), slug)

	// refuse before writing anything so a collision never leaves a half-created set
	paths := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			return nil, fmt.Errorf("dir is required")
		}
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return nil, fmt.Errorf("migration already exists: %s", path)
		}
		paths = append(paths, path)
	}

	body := migrationTemplate(slug)
	for i, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %q: %w", dir, err)
		}
		if err := os.WriteFile(paths[i], []byte(body), 0o644); err != nil {
			return nil, fmt.Errorf("write migration %q: %w", paths[i], err)
		}
	}
	return paths, nil
}

func migrationTemplate(slug string) string {
	var b strings.Builder
	b.WriteString("-- +goose Up\n-- +goose StatementBegin\n")
	fmt.Fprintf(&b, "SELECT 'up: %s';\n", slug)
	b.WriteString("-- +goose StatementEnd\n\n-- +goose Down\n-- +goose StatementBegin\n")
	fmt.Fprintf(&b, "SELECT 'down: %s';\n", slug)
	b.WriteString("-- +goose StatementEnd\n")
	return b.String()
}
