package assets

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed default_config.json sql/*.sql
var FS embed.FS

// DefaultConfig returns the embedded game configuration document.
func DefaultConfig() ([]byte, error) {
	return FS.ReadFile("default_config.json")
}

// Migrations returns the embedded *.sql migration names in lexical order.
func Migrations() ([]string, error) {
	entries, err := fs.ReadDir(FS, "sql")
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			continue
		}
		out = append(out, "sql/"+e.Name())
	}
	sort.Strings(out)
	return out, nil
}
