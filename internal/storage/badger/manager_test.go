package badger

import (
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
	mgr, err := NewManager(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestBadgerStorageContract(t *testing.T) {
	storagetest.Run(t, newTestManager)
}
