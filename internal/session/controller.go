// Package session holds the process-wide "is a user logged in" flag.
//
// A Controller is constructed once at startup and passed to whatever needs
// it. The flag starts from the credential store and changes only through
// MarkLoggedIn and MarkLoggedOut. The store, not the flag, decides whether
// requests are actually authorized; the flag only picks which screen to show.
package session

import (
	"fmt"
	"sync"

	"github.com/five82/booktracker/internal/credstore"
)

// Logouter clears the persisted session. *api.Client implements it.
type Logouter interface {
	Logout() error
}

// Controller coordinates concurrent reads of the authenticated flag.
type Controller struct {
	mu            sync.RWMutex
	authenticated bool
	logout        Logouter
}

// New reads the initial state from store: a stored api key means logged in.
// A store read failure starts logged out.
func New(store credstore.Store, logout Logouter) *Controller {
	c := &Controller{logout: logout}
	if store != nil {
		if key, ok, err := store.Get(credstore.KeyAPIKey); err == nil && ok && key != "" {
			c.authenticated = true
		}
	}
	return c
}

// Authenticated reports the current flag.
func (c *Controller) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

// MarkLoggedIn is called after a login round trip succeeded.
func (c *Controller) MarkLoggedIn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authenticated = true
}

// MarkLoggedOut clears the stored session and drops the flag. The flag is
// cleared even when clearing the store failed; the error is returned.
func (c *Controller) MarkLoggedOut() error {
	var err error
	if c.logout != nil {
		if lerr := c.logout.Logout(); lerr != nil {
			err = fmt.Errorf("logout: %w", lerr)
		}
	}
	c.mu.Lock()
	c.authenticated = false
	c.mu.Unlock()
	return err
}
