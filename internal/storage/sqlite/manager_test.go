package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/storage/storagetest"
)

func newTestManager(t *testing.T) interfaces.StorageManager {
	t.Helper()

	logger := arbor.NewLogger()
	path := filepath.Join(t.TempDir(), "colligo-test.db")
	mgr, err := NewManager(logger, &common.SqliteConfig{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestSqliteStorageContract(t *testing.T) {
	storagetest.Run(t, newTestManager)
}
