package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/booktracker/internal/api"
)

type shelvesLoadedMsg struct {
	seq    uint64
	result api.ShelvesResult
	err    error
}

type shelfLoadedMsg struct {
	seq    uint64
	detail api.ShelfDetail
	err    error
}

type bookLoadedMsg struct {
	seq  uint64
	book api.BookDetail
	err  error
}

// Loaders. Each starts a fresh request for its screen, superseding anything
// still in flight.

func (m *Model) loadShelves() tea.Cmd {
	ctx, seq := m.beginRequest()
	m.shelves.state = stateLoading
	m.shelves.err = ""
	client := m.client
	return func() tea.Msg {
		res, err := client.Shelves(ctx)
		return shelvesLoadedMsg{seq: seq, result: res, err: err}
	}
}

func (m *Model) loadShelf() tea.Cmd {
	ctx, seq := m.beginRequest()
	m.shelf.state = stateLoading
	m.shelf.err = ""
	client, id := m.client, m.shelf.id
	return func() tea.Msg {
		detail, err := client.Shelf(ctx, id)
		return shelfLoadedMsg{seq: seq, detail: detail, err: err}
	}
}

func (m *Model) loadBook() tea.Cmd {
	ctx, seq := m.beginRequest()
	m.book.state = stateLoading
	m.book.err = ""
	client, id := m.client, m.book.id
	return func() tea.Msg {
		book, err := client.Book(ctx, id)
		return bookLoadedMsg{seq: seq, book: book, err: err}
	}
}

// Results

func (m Model) handleShelvesLoaded(msg shelvesLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.finishRequest(msg.seq) {
		return m, nil
	}
	if msg.err != nil {
		if isUnauthorized(msg.err) {
			return m.expireSession(msg.err, "shelves")
		}
		m.shelves.state = stateFailed
		m.shelves.err = m.failureText(msg.err, "shelves")
		return m, nil
	}
	m.shelves.state = stateLoaded
	m.shelves.user = msg.result.User
	m.shelves.shelves = msg.result.Shelves
	m.shelves.cursor = clampCursor(m.shelves.cursor, len(m.shelves.shelves))
	return m, nil
}

func (m Model) handleShelfLoaded(msg shelfLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.finishRequest(msg.seq) {
		return m, nil
	}
	if msg.err != nil {
		if isUnauthorized(msg.err) {
			return m.expireSession(msg.err, "shelf")
		}
		m.shelf.state = stateFailed
		m.shelf.err = m.failureText(msg.err, "shelf")
		return m, nil
	}
	m.shelf.state = stateLoaded
	m.shelf.detail = msg.detail
	if msg.detail.Name != "" {
		m.shelf.name = msg.detail.Name
	}
	m.shelf.cursor = clampCursor(m.shelf.cursor, len(msg.detail.Books))
	return m, nil
}

func (m Model) handleBookLoaded(msg bookLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.finishRequest(msg.seq) {
		return m, nil
	}
	if msg.err != nil {
		if isUnauthorized(msg.err) {
			return m.expireSession(msg.err, "book details")
		}
		m.book.state = stateFailed
		m.book.err = m.failureText(msg.err, "book details")
		return m, nil
	}
	m.book.state = stateLoaded
	m.book.book = msg.book
	m.book.title = msg.book.Title
	m.book.viewport.SetContent(m.bookContent())
	m.book.viewport.GotoTop()
	return m, nil
}

// expireSession ends a session the server rejected and sends the user back
// to the login form.
func (m Model) expireSession(err error, thing string) (tea.Model, tea.Cmd) {
	m.log.Info("session rejected", "loading", thing, "error", err)
	return m.logout(sessionExpiredText)
}

func (m Model) failureText(err error, thing string) string {
	m.log.Warn("load failed", "loading", thing, "error", err)
	return loadErrorText(err, thing)
}

// Keys

func (m Model) handleShelvesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.shelves.shelves)
	switch {
	case keyMatches(msg, m.keys.Retry):
		if m.shelves.state != stateLoading {
			cmd := m.loadShelves()
			return m, cmd
		}
	case keyMatches(msg, m.keys.Open):
		if m.shelves.state == stateLoaded && n > 0 {
			s := m.shelves.shelves[m.shelves.cursor]
			m.shelf = shelfState{id: s.ID, name: s.Name}
			m.screen = ScreenShelf
			cmd := m.loadShelf()
			return m, cmd
		}
	default:
		m.shelves.cursor = moveCursor(m.keys, msg, m.shelves.cursor, n)
	}
	return m, nil
}

func (m Model) handleShelfKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.shelf.detail.Books)
	switch {
	case keyMatches(msg, m.keys.Back):
		m.cancelInFlight()
		m.screen = ScreenShelves
		if m.shelves.state != stateLoaded {
			cmd := m.loadShelves()
			return m, cmd
		}
	case keyMatches(msg, m.keys.Retry):
		if m.shelf.state != stateLoading {
			cmd := m.loadShelf()
			return m, cmd
		}
	case keyMatches(msg, m.keys.Open):
		if m.shelf.state == stateLoaded && n > 0 {
			b := m.shelf.detail.Books[m.shelf.cursor]
			m.book = bookState{id: b.ID, title: b.Title, viewport: m.book.viewport}
			m.book.viewport.SetContent("")
			m.screen = ScreenBook
			cmd := m.loadBook()
			return m, cmd
		}
	default:
		m.shelf.cursor = moveCursor(m.keys, msg, m.shelf.cursor, n)
	}
	return m, nil
}

func (m Model) handleBookKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case keyMatches(msg, m.keys.Back):
		m.cancelInFlight()
		m.screen = ScreenShelf
		if m.shelf.state != stateLoaded {
			cmd := m.loadShelf()
			return m, cmd
		}
		return m, nil
	case keyMatches(msg, m.keys.Retry):
		if m.book.state != stateLoading {
			cmd := m.loadBook()
			return m, cmd
		}
		return m, nil
	case keyMatches(msg, m.keys.Top):
		m.book.viewport.GotoTop()
		return m, nil
	case keyMatches(msg, m.keys.Bottom):
		m.book.viewport.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.book.viewport, cmd = m.book.viewport.Update(msg)
	return m, cmd
}

func moveCursor(keys keyMap, msg tea.KeyMsg, cursor, n int) int {
	if n == 0 {
		return 0
	}
	switch {
	case keyMatches(msg, keys.Up):
		cursor--
	case keyMatches(msg, keys.Down):
		cursor++
	case keyMatches(msg, keys.Top):
		cursor = 0
	case keyMatches(msg, keys.Bottom):
		cursor = n - 1
	}
	return clampCursor(cursor, n)
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
