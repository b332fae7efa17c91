package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"stasher/internal/fakeapi"
)

// StartFakeAPI serves the built-in fixtures until the test ends. The returned
// store exposes the bookings the server has taken.
func StartFakeAPI(t *testing.T) (*httptest.Server, *fakeapi.Store) {
	t.Helper()

	fixtures, err := fakeapi.LoadFixtures("")
	if err != nil {
		t.Fatalf("loading fixtures: %v", err)
	}
	store := fakeapi.NewStore(fixtures)
	srv := httptest.NewServer(fakeapi.NewController(store, time.UTC, zap.NewNop()).Routes())
	t.Cleanup(srv.Close)
	return srv, store
}
