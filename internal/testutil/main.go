package testutil

import (
	"context"
	"flag"
	"log/slog"
	"testing"
)

// RunWithPostgres is the body of a package TestMain: it starts a container
// unless -short is set, stores it in *pg and runs the tests.
func RunWithPostgres(m *testing.M, pg **Postgres) int {
	flag.Parse()
	if !testing.Short() {
		p, err := StartPostgres(context.Background())
		if err != nil {
			slog.Warn("Integration tests will be skipped", "error", err)
		} else {
			*pg = p
		}
	}
	code := m.Run()
	(*pg).Terminate()
	return code
}
