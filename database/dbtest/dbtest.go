// Package dbtest provides throwaway migrated databases for tests.
package dbtest

import (
	"fmt"
	"lms/database"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var counter atomic.Int64

// New returns a migrated in-memory sqlite database private to tb.
func New(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(tb.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, counter.Add(1))

	db, err := database.Open("sqlite", dsn)
	require.NoError(tb, err)

	sqlDB, err := db.DB()
	require.NoError(tb, err)
	// one connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(tb, database.Migrate(db))
	return db
}
