// Package migrations embeds the schema for the leads table, one directory
// per database driver.
package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// For returns the migration set for driver ("sqlite" or "postgres").
func For(driver string) (fs.FS, error) {
	switch driver {
	case "sqlite", "postgres":
		return fs.Sub(files, driver)
	}
	return nil, fmt.Errorf("migrations: unsupported driver %q", driver)
}
