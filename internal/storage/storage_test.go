package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	at := time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)

	key := ObjectKey("exports", at, "xlsx")
	assert.True(t, strings.HasPrefix(key, "exports/2026/10/"))
	assert.True(t, strings.HasSuffix(key, ".xlsx"))
	assert.NotEqual(t, key, ObjectKey("exports", at, ".xlsx"))
}

func TestLocalStorage_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	size, err := store.Put(ctx, "exports/2026/10/a.txt", "text/plain", strings.NewReader("register"))
	require.NoError(t, err)
	assert.Equal(t, int64(8), size)

	r, err := store.Get(ctx, "exports/2026/10/a.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "register", string(data))

	require.NoError(t, store.Delete(ctx, "exports/2026/10/a.txt"))
	require.NoError(t, store.Delete(ctx, "exports/2026/10/a.txt"))

	_, err = store.Get(ctx, "exports/2026/10/a.txt")
	assert.Error(t, err)
}

func TestLocalStorage_RejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "/etc/passwd", "../outside.txt", "exports/../../x"} {
		_, err := store.Put(context.Background(), key, "text/plain", strings.NewReader("x"))
		assert.Error(t, err, key)
	}
}
