package mongostore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MohammadRstm/BookApp/internal/id"
	"github.com/MohammadRstm/BookApp/internal/store"
	"github.com/MohammadRstm/BookApp/internal/store/storetest"
)

func TestMongo_Conformance(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	storetest.Run(t, func(t *testing.T) store.Store {
		name := "bookapp_test_" + id.MustGenerate("db")[3:13]
		s, err := Open(context.Background(), uri, name, nil)
		require.NoError(t, err)
		s.dropOnClose = true
		return s
	})
}
