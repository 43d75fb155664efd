package contacts

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/rr-callscreen/internal/screen/common/log"
)

func TestReadList(t *testing.T) {
	p := filepath.Join(t.TempDir(), "contacts.txt")
	require.NoError(t, os.WriteFile(p, []byte("# family\n+1 555 0100\n+44 20 7946 0000\n1555*\n"), 0o644))

	ids, err := ReadList(p, log.NewNoopLogger(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"15550100", "442079460000"}, ids)
}

func TestReadList_Missing(t *testing.T) {
	_, err := ReadList(filepath.Join(t.TempDir(), "missing.txt"), log.NewNoopLogger(), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error opening contact list")
}
