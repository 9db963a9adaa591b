package sites

import (
	"embed"
	"io/fs"
)

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

// Migrations returns the embedded schema migrations, rooted at the directory
// that holds the *.up.sql files. Pair it with storage.ApplyMigrations when
// provisioning a database for the module.
func Migrations() (fs.FS, error) {
	return fs.Sub(migrationsFS, "data/sql/migrations")
}
