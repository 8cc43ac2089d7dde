package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/storefront/internal/infra/persistence/persistencetest"
)

func TestKVStoreContract(t *testing.T) {
	dsn := os.Getenv("STOREFRONT_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("STOREFRONT_TEST_PG_DSN not set")
	}
	store, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	defer store.Close()

	persistencetest.RunStoreContract(t, store)
}
