package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var memoryDBSeq atomic.Int64

// NewMemoryBunDB opens a private in-memory sqlite database wrapped in bun.
// Every call gets its own database, so tests never observe each other's
// rows. The pool is capped at one connection because sqlite's shared-cache
// memory databases disappear once their last connection closes.
func NewMemoryBunDB() (*bun.DB, error) {
	dsn := fmt.Sprintf("file:sites_test_%d?mode=memory&cache=shared", memoryDBSeq.Add(1))
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}
