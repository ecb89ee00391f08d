package testutil

import (
	"errors"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"
)

// ErrInjected is the error returned by queries failed with FailQuery.
var ErrInjected = errors.New("injected query failure")

// FailQuery makes the nth query (1-based) against table fail with
// ErrInjected. The hook is removed when the test ends.
func FailQuery(t *testing.T, db *gorm.DB, table string, nth int32) {
	t.Helper()
	var seen atomic.Int32
	name := "testutil:fail_" + table
	err := db.Callback().Query().Before("gorm:query").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table != table {
			return
		}
		if seen.Add(1) == nth {
			tx.AddError(ErrInjected)
		}
	})
	if err != nil {
		t.Fatalf("register query hook: %v", err)
	}
	t.Cleanup(func() {
		db.Callback().Query().Remove(name)
	})
}
