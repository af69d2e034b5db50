package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/booktracker/internal/api"
	"github.com/five82/booktracker/internal/credstore"
	"github.com/five82/booktracker/internal/prefs"
	"github.com/five82/booktracker/internal/session"
)

type fakeFetcher struct {
	mu sync.Mutex

	store credstore.Store

	session    api.Session
	loginErr   error
	shelves    api.ShelvesResult
	shelvesErr error
	shelf      api.ShelfDetail
	shelfErr   error
	book       api.BookDetail
	bookErr    error

	calls   []string
	ctxs    []context.Context
	logouts int
}

func (f *fakeFetcher) record(ctx context.Context, call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.ctxs = append(f.ctxs, ctx)
}

func (f *fakeFetcher) Login(ctx context.Context, email, password string) (api.Session, error) {
	f.record(ctx, "login "+email)
	if f.loginErr != nil {
		return api.Session{}, f.loginErr
	}
	if f.store != nil {
		_ = f.store.Save(credstore.KeyAPIKey, f.session.APIKey)
	}
	return f.session, nil
}

func (f *fakeFetcher) Shelves(ctx context.Context) (api.ShelvesResult, error) {
	f.record(ctx, "shelves")
	return f.shelves, f.shelvesErr
}

func (f *fakeFetcher) Shelf(ctx context.Context, id int64) (api.ShelfDetail, error) {
	f.record(ctx, "shelf")
	return f.shelf, f.shelfErr
}

func (f *fakeFetcher) Book(ctx context.Context, id int64) (api.BookDetail, error) {
	f.record(ctx, "book")
	return f.book, f.bookErr
}

func (f *fakeFetcher) Logout() error {
	f.mu.Lock()
	f.logouts++
	f.mu.Unlock()
	if f.store != nil {
		_ = f.store.Delete(credstore.KeyAPIKey)
	}
	return nil
}

func newTestModel(t *testing.T, f *fakeFetcher, loggedIn bool) (Model, *session.Controller, string) {
	t.Helper()
	store := credstore.NewMemoryStore()
	if loggedIn {
		if err := store.Save(credstore.KeyAPIKey, "k"); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}
	f.store = store
	ctrl := session.New(store, f)
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	m := New(Options{
		Client:    f,
		Session:   ctrl,
		PrefsPath: prefsPath,
	})
	return m, ctrl, prefsPath
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func keyRune(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func sampleShelves() api.ShelvesResult {
	return api.ShelvesResult{
		User: "reader@example.com",
		Shelves: []api.Shelf{
			{ID: 1, Name: "Fiction", BookCount: 2},
			{ID: 2, Name: "Poetry", BookCount: 1},
		},
	}
}

func TestNewStartsOnLoginWhenLoggedOut(t *testing.T) {
	m, _, _ := newTestModel(t, &fakeFetcher{}, false)
	if m.Screen() != ScreenLogin {
		t.Fatalf("screen = %v, want login", m.Screen())
	}
	if !strings.Contains(m.View(), "Log in") {
		t.Fatalf("login view missing title:\n%s", m.View())
	}
}

func TestNewStartsOnShelvesWhenLoggedIn(t *testing.T) {
	f := &fakeFetcher{shelves: sampleShelves()}
	m, _, _ := newTestModel(t, f, true)
	if m.Screen() != ScreenShelves {
		t.Fatalf("screen = %v, want shelves", m.Screen())
	}
	if m.shelves.state != stateLoading {
		t.Fatalf("state = %v, want loading", m.shelves.state)
	}

	m, _ = update(t, m, m.initCmd())
	if m.shelves.state != stateLoaded {
		t.Fatalf("state = %v, want loaded", m.shelves.state)
	}
	view := m.View()
	for _, want := range []string{"Fiction", "2 books", "Poetry", "1 book"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestLoginRequiresBothFields(t *testing.T) {
	f := &fakeFetcher{}
	m, _, _ := newTestModel(t, f, false)
	m.login.email.SetValue("a@b.com")

	m, cmd := update(t, m, keyEnter)
	if cmd != nil {
		t.Fatal("expected no request for an empty password")
	}
	if m.login.err != emptyCredentialsText {
		t.Fatalf("err = %q", m.login.err)
	}
	if len(f.calls) != 0 {
		t.Fatalf("calls = %v", f.calls)
	}
}

func TestLoginSuccessLoadsShelvesAndRemembersEmail(t *testing.T) {
	f := &fakeFetcher{session: api.Session{UserID: 7, APIKey: "k"}, shelves: sampleShelves()}
	m, ctrl, prefsPath := newTestModel(t, f, false)
	m.login.email.SetValue(" a@b.com ")
	m.login.password.SetValue("pw")

	m, cmd := update(t, m, keyEnter)
	if !m.login.busy {
		t.Fatal("expected busy while logging in")
	}
	m, cmd = update(t, m, cmd())

	if m.Screen() != ScreenShelves {
		t.Fatalf("screen = %v, want shelves", m.Screen())
	}
	if !ctrl.Authenticated() {
		t.Fatal("controller should be authenticated")
	}
	if m.login.password.Value() != "" {
		t.Fatal("password should be cleared")
	}
	p, err := prefs.Load(prefsPath)
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if p.LastEmail != "a@b.com" {
		t.Fatalf("LastEmail = %q", p.LastEmail)
	}

	m, _ = update(t, m, cmd())
	if m.shelves.user != "reader@example.com" {
		t.Fatalf("user = %q", m.shelves.user)
	}
}

func TestLoginFailureMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", &api.Error{Kind: api.KindUnauthorized, Op: "login", StatusCode: 401}, "Invalid email or password"},
		{"server", &api.Error{Kind: api.KindServer, Op: "login", StatusCode: 500}, "Server error (500)"},
		{"transport", &api.Error{Kind: api.KindInvalidResponse, Op: "login", Err: errors.New("refused")}, "Connection failed. Please try again."},
		{"not saved", fmt.Errorf("login: %w: %w", api.ErrSessionNotSaved, errors.New("disk full")), "Could not save session. Please try again."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := &fakeFetcher{loginErr: tc.err}
			m, ctrl, _ := newTestModel(t, f, false)
			m.login.email.SetValue("a@b.com")
			m.login.password.SetValue("pw")

			m, cmd := update(t, m, keyEnter)
			m, _ = update(t, m, cmd())
			if m.Screen() != ScreenLogin {
				t.Fatalf("screen = %v", m.Screen())
			}
			if m.login.err != tc.want {
				t.Fatalf("err = %q, want %q", m.login.err, tc.want)
			}
			if ctrl.Authenticated() {
				t.Fatal("controller should stay logged out")
			}
		})
	}
}

func TestEmptyStates(t *testing.T) {
	f := &fakeFetcher{shelves: api.ShelvesResult{User: "u"}}
	m, _, _ := newTestModel(t, f, true)
	m, _ = update(t, m, m.initCmd())
	if !strings.Contains(m.View(), "You don't have any shelves yet.") {
		t.Fatalf("missing empty shelves text:\n%s", m.View())
	}

	f.shelves = sampleShelves()
	m, cmd := update(t, m, keyRune("r"))
	m, _ = update(t, m, cmd())

	f.shelf = api.ShelfDetail{ID: 1, Name: "Fiction"}
	m, cmd = update(t, m, keyEnter)
	if m.Screen() != ScreenShelf {
		t.Fatalf("screen = %v, want shelf", m.Screen())
	}
	m, _ = update(t, m, cmd())
	if !strings.Contains(m.View(), "This shelf is empty.") {
		t.Fatalf("missing empty shelf text:\n%s", m.View())
	}
}

func TestServerErrorShowsRetryableMessage(t *testing.T) {
	f := &fakeFetcher{shelvesErr: &api.Error{Kind: api.KindServer, Op: "shelves", StatusCode: 503}}
	m, _, _ := newTestModel(t, f, true)
	m, _ = update(t, m, m.initCmd())

	if m.shelves.state != stateFailed {
		t.Fatalf("state = %v, want failed", m.shelves.state)
	}
	if m.shelves.err != "Server error (503). Please try again." {
		t.Fatalf("err = %q", m.shelves.err)
	}

	f.shelvesErr = nil
	f.shelves = sampleShelves()
	m, cmd := update(t, m, keyRune("r"))
	if cmd == nil {
		t.Fatal("retry should issue a request")
	}
	m, _ = update(t, m, cmd())
	if m.shelves.state != stateLoaded {
		t.Fatalf("state = %v, want loaded", m.shelves.state)
	}
}

func TestDecodingErrorNamesWhatFailed(t *testing.T) {
	f := &fakeFetcher{
		shelves: sampleShelves(),
		shelf:   api.ShelfDetail{ID: 1, Name: "Fiction", Books: []api.BookSummary{{ID: 9, Title: "Dune"}}},
		bookErr: &api.Error{Kind: api.KindDecoding, Op: "book", Err: errors.New("bad json")},
	}
	m, _, _ := newTestModel(t, f, true)
	m, _ = update(t, m, m.initCmd())
	m, cmd := update(t, m, keyEnter)
	m, _ = update(t, m, cmd())
	m, cmd = update(t, m, keyEnter)
	m, _ = update(t, m, cmd())

	if m.Screen() != ScreenBook {
		t.Fatalf("screen = %v, want book", m.Screen())
	}
	if m.book.err != "Failed to load book details. Please try again." {
		t.Fatalf("err = %q", m.book.err)
	}
}

func TestUnauthorizedLogsOutAndReturnsToLogin(t *testing.T) {
	f := &fakeFetcher{shelves: sampleShelves(), shelfErr: &api.Error{Kind: api.KindUnauthorized, Op: "shelf", StatusCode: 401}}
	m, ctrl, _ := newTestModel(t, f, true)
	m, _ = update(t, m, m.initCmd())
	m, cmd := update(t, m, keyEnter)
	m, _ = update(t, m, cmd())

	if m.Screen() != ScreenLogin {
		t.Fatalf("screen = %v, want login", m.Screen())
	}
	if m.login.err != sessionExpiredText {
		t.Fatalf("err = %q", m.login.err)
	}
	if ctrl.Authenticated() {
		t.Fatal("controller should be logged out")
	}
	if f.logouts != 1 {
		t.Fatalf("logouts = %d, want 1", f.logouts)
	}
}

func TestLeavingScreenCancelsAndDropsLateResult(t *testing.T) {
	f := &fakeFetcher{
		shelves: sampleShelves(),
		shelf:   api.ShelfDetail{ID: 1, Name: "Fiction", Books: []api.BookSummary{{ID: 9, Title: "Dune"}}},
	}
	m, _, _ := newTestModel(t, f, true)
	m, _ = update(t, m, m.initCmd())

	m, shelfCmd := update(t, m, keyEnter)
	m, _ = update(t, m, keyEsc)
	if m.Screen() != ScreenShelves {
		t.Fatalf("screen = %v, want shelves", m.Screen())
	}

	late := shelfCmd()
	if err := f.ctxs[len(f.ctxs)-1].Err(); !errors.Is(err, context.Canceled) {
		t.Fatalf("shelf ctx err = %v, want canceled", err)
	}
	m, _ = update(t, m, late)
	if m.shelf.state == stateLoaded {
		t.Fatal("late result should be dropped")
	}
	if m.Screen() != ScreenShelves {
		t.Fatalf("screen = %v, want shelves", m.Screen())
	}
}

func TestNewerRequestSupersedesOlder(t *testing.T) {
	f := &fakeFetcher{shelves: sampleShelves()}
	m, _, _ := newTestModel(t, f, true)
	first := m.initCmd

	m, _ = update(t, m, m.initCmd())
	m, second := update(t, m, keyRune("r"))

	f.shelves = api.ShelvesResult{User: "stale"}
	staleMsg := first()
	m, _ = update(t, m, staleMsg)
	if m.shelves.state != stateLoading {
		t.Fatalf("stale result applied: state = %v", m.shelves.state)
	}

	f.shelves = sampleShelves()
	m, _ = update(t, m, second())
	if m.shelves.user != "reader@example.com" {
		t.Fatalf("user = %q", m.shelves.user)
	}
}

func TestBookViewRendersComments(t *testing.T) {
	f := &fakeFetcher{
		shelves: sampleShelves(),
		shelf:   api.ShelfDetail{ID: 1, Name: "Fiction", Books: []api.BookSummary{{ID: 9, Title: "Dune", Author: "Herbert"}}},
		book: api.BookDetail{
			ID: 9, Title: "Dune", Author: "Herbert", ShelfID: 1, ShelfName: "Fiction",
			Comments: "<p>Spice <b>must</b> flow.</p>",
		},
	}
	m, _, _ := newTestModel(t, f, true)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, m.initCmd())
	m, cmd := update(t, m, keyEnter)
	m, _ = update(t, m, cmd())
	m, cmd = update(t, m, keyEnter)
	m, _ = update(t, m, cmd())

	view := m.View()
	for _, want := range []string{"Herbert", "Fiction", "Spice must flow."} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	m, _ = update(t, m, keyEsc)
	if m.Screen() != ScreenShelf {
		t.Fatalf("screen = %v, want shelf", m.Screen())
	}
}

func TestLogoutKeyClearsSession(t *testing.T) {
	f := &fakeFetcher{shelves: sampleShelves()}
	m, ctrl, _ := newTestModel(t, f, true)
	m, _ = update(t, m, m.initCmd())

	m, _ = update(t, m, keyRune("L"))
	if m.Screen() != ScreenLogin {
		t.Fatalf("screen = %v, want login", m.Screen())
	}
	if ctrl.Authenticated() {
		t.Fatal("controller should be logged out")
	}
	if m.login.err != "" {
		t.Fatalf("err = %q, want none", m.login.err)
	}
}

func TestCycleThemePersists(t *testing.T) {
	f := &fakeFetcher{shelves: sampleShelves()}
	m, _, prefsPath := newTestModel(t, f, true)

	m, _ = update(t, m, keyRune("T"))
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q", m.theme.Name)
	}
	p, err := prefs.Load(prefsPath)
	if err != nil {
		t.Fatalf("load prefs: %v", err)
	}
	if p.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q", p.Theme)
	}
}

func TestCursorStaysInRange(t *testing.T) {
	f := &fakeFetcher{shelves: sampleShelves()}
	m, _, _ := newTestModel(t, f, true)
	m, _ = update(t, m, m.initCmd())

	for range 5 {
		m, _ = update(t, m, keyRune("j"))
	}
	if m.shelves.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", m.shelves.cursor)
	}
	m, _ = update(t, m, keyRune("g"))
	if m.shelves.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.shelves.cursor)
	}
}
