//go:build integration

package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/drinks-api/internal/auth"
	"github.com/xenking/drinks-api/internal/storage/postgres/pgtest"
)

func TestServer_Postgres(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pg, err := pgtest.Start(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Stop(context.Background()) })

	s := newStack(t, func(cfg *Config) {
		cfg.Storage = StorageConfig{Driver: DriverPostgres, DatabaseURL: pg.URL}
	})
	require.NoError(t, s.store.Reset(ctx))

	body := `{"title":"Flat White","recipe":[{"name":"milk","color":"white","parts":"1.5"}]}`
	resp := s.do(t, http.MethodPost, "/drinks", body, auth.PermissionPostDrinks)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/drinks", body, auth.PermissionPostDrinks)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/drinks-detail", "", auth.PermissionGetDrinksDetail)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
