package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const (
	upSuffix      = ".up.sql"
	downSuffix    = ".down.sql"
	versionLayout = "20060102150405"
)

var fileTemplates = template.Must(template.New("up").Parse(`-- Migration: {{.Title}}
-- Created: {{.Created}}
{{- if .Description}}
-- Description: {{.Description}}
{{- end}}

`))

func init() {
	template.Must(fileTemplates.New("down").Parse(`-- Migration: {{.Title}} (Rollback)
-- Created: {{.Created}}

`))
}

// Migration is one versioned pair of SQL files
type Migration struct {
	Version  uint64
	Slug     string
	UpPath   string
	DownPath string // empty when the rollback file is missing
}

// Name returns the file base shared by both halves, e.g. 20260301090000_create_master_data
func (m Migration) Name() string {
	return fmt.Sprintf("%d_%s", m.Version, m.Slug)
}

// Creator writes new migration pairs into a directory
type Creator struct {
	Dir string
	Now func() time.Time
}

// NewCreator returns a Creator stamping versions with the current UTC time
func NewCreator(dir string) *Creator {
	return &Creator{Dir: dir, Now: func() time.Time { return time.Now().UTC() }}
}

// Create writes <version>_<slug>.up.sql and .down.sql. The version is
// bumped past the newest existing one so files always sort after it.
func (c *Creator) Create(title, description string) (Migration, error) {
	slug := Slugify(title)
	if slug == "" {
		return Migration{}, fmt.Errorf("migration name %q has no usable characters", title)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return Migration{}, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(c.Dir)
	if err != nil {
		return Migration{}, err
	}
	now := c.Now()
	version, _ := strconv.ParseUint(now.Format(versionLayout), 10, 64)
	if n := len(existing); n > 0 && existing[n-1].Version >= version {
		version = existing[n-1].Version + 1
	}

	mig := Migration{Version: version, Slug: slug}
	mig.UpPath = filepath.Join(c.Dir, mig.Name()+upSuffix)
	mig.DownPath = filepath.Join(c.Dir, mig.Name()+downSuffix)

	data := struct{ Title, Description, Created string }{title, description, now.Format(time.RFC3339)}
	if err := writeTemplate(mig.UpPath, "up", data); err != nil {
		return Migration{}, err
	}
	if err := writeTemplate(mig.DownPath, "down", data); err != nil {
		_ = os.Remove(mig.UpPath)
		return Migration{}, err
	}
	return mig, nil
}

func writeTemplate(path, name string, data any) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fileTemplates.ExecuteTemplate(f, name, data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	return f.Close()
}

// Slugify lowercases name and collapses separators into single underscores
func Slugify(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the migrations in dir ordered by version.
// A missing directory yields an empty list.
func ListMigrations(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byName := make(map[string]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		base, isUp := strings.CutSuffix(name, upSuffix)
		if !isUp {
			var isDown bool
			if base, isDown = strings.CutSuffix(name, downSuffix); !isDown {
				continue
			}
		}
		rawVersion, slug, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		version, err := strconv.ParseUint(rawVersion, 10, 64)
		if err != nil {
			continue
		}

		mig, seen := byName[base]
		if !seen {
			mig = &Migration{Version: version, Slug: slug}
			byName[base] = mig
		}
		if isUp {
			mig.UpPath = filepath.Join(dir, name)
		} else {
			mig.DownPath = filepath.Join(dir, name)
		}
	}

	out := make([]Migration, 0, len(byName))
	for _, mig := range byName {
		if mig.UpPath == "" {
			continue
		}
		out = append(out, *mig)
	}
	slices.SortFunc(out, func(a, b Migration) int {
		if a.Version < b.Version {
			return -1
		}
		if a.Version > b.Version {
			return 1
		}
		return strings.Compare(a.Slug, b.Slug)
	})
	return out, nil
}
