package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/booktracker/internal/credstore"
)

type fakeLogouter struct {
	calls int
	err   error
	store credstore.Store
}

func (f *fakeLogouter) Logout() error {
	f.calls++
	if f.store != nil {
		_ = f.store.Delete(credstore.KeyAPIKey)
		_ = f.store.Delete(credstore.KeyUserID)
	}
	return f.err
}

type brokenStore struct{ credstore.MemoryStore }

func (b *brokenStore) Get(string) (string, bool, error) {
	return "", false, errors.New("locked")
}

func TestNew_InitialStateFollowsStore(t *testing.T) {
	empty := credstore.NewMemoryStore()
	assert.False(t, New(empty, nil).Authenticated())

	withKey := credstore.NewMemoryStore()
	require.NoError(t, withKey.Save(credstore.KeyAPIKey, "k1"))
	assert.True(t, New(withKey, nil).Authenticated())

	assert.False(t, New(&brokenStore{}, nil).Authenticated())
	assert.False(t, New(nil, nil).Authenticated())
}

func TestController_Transitions(t *testing.T) {
	store := credstore.NewMemoryStore()
	logout := &fakeLogouter{store: store}
	c := New(store, logout)

	c.MarkLoggedIn()
	assert.True(t, c.Authenticated())

	require.NoError(t, store.Save(credstore.KeyAPIKey, "k1"))
	require.NoError(t, c.MarkLoggedOut())
	assert.False(t, c.Authenticated())
	assert.Equal(t, 1, logout.calls)
	assert.Equal(t, 0, store.Len())

	// logging out twice is harmless
	require.NoError(t, c.MarkLoggedOut())
	assert.Equal(t, 2, logout.calls)
}

func TestController_LogoutErrorStillClearsFlag(t *testing.T) {
	logout := &fakeLogouter{err: errors.New("keyring locked")}
	c := New(credstore.NewMemoryStore(), logout)
	c.MarkLoggedIn()

	err := c.MarkLoggedOut()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keyring locked")
	assert.False(t, c.Authenticated())
}

func TestController_ConcurrentAccess(t *testing.T) {
	c := New(credstore.NewMemoryStore(), &fakeLogouter{})
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.MarkLoggedIn()
		}()
		go func() {
			defer wg.Done()
			_ = c.Authenticated()
		}()
	}
	wg.Wait()
	assert.True(t, c.Authenticated())
}
