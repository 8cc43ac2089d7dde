package mysql

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/storefront/internal/infra/persistence/persistencetest"
)

func TestKVStoreContract(t *testing.T) {
	dsn := os.Getenv("STOREFRONT_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("STOREFRONT_TEST_MYSQL_DSN not set")
	}
	store, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	defer store.Close()

	persistencetest.RunStoreContract(t, store)
}
