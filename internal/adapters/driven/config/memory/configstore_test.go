package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	store := NewConfigStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.values)
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Set_Update(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("ldap.url", "ldap://one"))
	require.NoError(t, store.Set("ldap.url", "ldap://two"))

	val, ok := store.Get("ldap.url")
	assert.True(t, ok)
	assert.Equal(t, "ldap://two", val)
}

func TestConfigStore_Get_Missing(t *testing.T) {
	store := NewConfigStore()

	_, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("missing"))
	assert.Zero(t, store.GetInt("missing"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("missing"))
	assert.Zero(t, store.GetDuration("missing"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("int", int64(3)))
	require.NoError(t, store.Set("intstr", "7"))
	require.NoError(t, store.Set("float", 2.5))
	require.NoError(t, store.Set("bool", true))
	require.NoError(t, store.Set("boolstr", "true"))
	require.NoError(t, store.Set("dur", "1.5s"))
	require.NoError(t, store.Set("secs", int64(2)))

	assert.Equal(t, 3, store.GetInt("int"))
	assert.Equal(t, 7, store.GetInt("intstr"))
	assert.InDelta(t, 2.5, store.GetFloat("float"), 0.0001)
	assert.InDelta(t, 3.0, store.GetFloat("int"), 0.0001)
	assert.True(t, store.GetBool("bool"))
	assert.True(t, store.GetBool("boolstr"))
	assert.Equal(t, 1500*time.Millisecond, store.GetDuration("dur"))
	assert.Equal(t, 2*time.Second, store.GetDuration("secs"))

	// wrong types read as zero values
	assert.Empty(t, store.GetString("int"))
	assert.False(t, store.GetBool("int"))
	assert.Zero(t, store.GetDuration("bool"))
}

func TestConfigStore_SaveLoadNoop(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("k", "v"))
	require.NoError(t, store.Save())
	require.NoError(t, store.Load())
	assert.Equal(t, "v", store.GetString("k"))
}

func TestConfigStore_Concurrent(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("webdir.enabled", n%2 == 0)
			_ = store.GetBool("webdir.enabled")
		}(i)
	}
	wg.Wait()

	_, ok := store.Get("webdir.enabled")
	assert.True(t, ok)
}
