package redis

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/storefront/internal/infra/persistence/persistencetest"
)

func TestStoreContract(t *testing.T) {
	url := os.Getenv("STOREFRONT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("STOREFRONT_TEST_REDIS_URL not set")
	}
	store, err := Open(context.Background(), url, "storefront-test")
	require.NoError(t, err)
	defer store.Close()

	persistencetest.RunStoreContract(t, store)
}

func TestKeyNamespace(t *testing.T) {
	require.Equal(t, "sf:cart", (&Store{namespace: "sf"}).key("cart"))
	require.Equal(t, "cart", (&Store{namespace: " "}).key("cart"))
}
