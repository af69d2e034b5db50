package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/booktracker/internal/api"
	"github.com/five82/booktracker/internal/prefs"
	"github.com/five82/booktracker/internal/session"
)

// Screen identifies which screen is showing.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenShelves
	ScreenShelf
	ScreenBook
)

// loadState is the per-screen idle -> loading -> loaded/failed machine.
type loadState int

const (
	stateIdle loadState = iota
	stateLoading
	stateLoaded
	stateFailed
)

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    api.Fetcher
	Session   *session.Controller
	Logger    *slog.Logger
	ThemeName string
	LastEmail string
	PrefsPath string
}

type loginState struct {
	email    textinput.Model
	password textinput.Model
	focus    int // 0 = email, 1 = password
	busy     bool
	err      string
}

type shelvesState struct {
	state   loadState
	err     string
	user    string
	shelves []api.Shelf
	cursor  int
}

type shelfState struct {
	state  loadState
	err    string
	id     int64
	name   string
	detail api.ShelfDetail
	cursor int
}

type bookState struct {
	state    loadState
	err      string
	id       int64
	title    string
	book     api.BookDetail
	viewport viewport.Model
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	client    api.Fetcher
	session   *session.Controller
	log       *slog.Logger
	prefsPath string

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	screen   Screen
	width    int
	height   int
	showHelp bool

	login   loginState
	shelves shelvesState
	shelf   shelfState
	book    bookState

	// In-flight request bookkeeping. Only the result for reqSeq is applied;
	// cancel aborts the request when its screen is left.
	reqSeq uint64
	cancel context.CancelFunc

	initCmd tea.Cmd
}

// New creates a new Bubble Tea model. The starting screen follows the
// session controller: authenticated users land on their shelves.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	email := textinput.New()
	email.Placeholder = "Email"
	email.Prompt = "Email     "
	email.CharLimit = 254
	email.SetValue(strings.TrimSpace(opts.LastEmail))

	password := textinput.New()
	password.Placeholder = "Password"
	password.Prompt = "Password  "
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:       ctx,
		client:    opts.Client,
		session:   opts.Session,
		log:       log,
		prefsPath: opts.PrefsPath,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		login:     loginState{email: email, password: password},
		book:      bookState{viewport: viewport.New(80, 20)},
	}

	if m.session != nil && m.session.Authenticated() {
		m.screen = ScreenShelves
		m.initCmd = m.loadShelves()
	} else {
		m.screen = ScreenLogin
		m.initCmd = m.focusLogin()
	}
	return m
}

// Screen reports the current screen.
func (m Model) Screen() Screen {
	return m.screen
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initCmd, m.spinner.Tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeBookViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loginDoneMsg:
		return m.handleLoginDone(msg)

	case shelvesLoadedMsg:
		return m.handleShelvesLoaded(msg)

	case shelfLoadedMsg:
		return m.handleShelfLoaded(msg)

	case bookLoadedMsg:
		return m.handleBookLoaded(msg)
	}

	if m.screen == ScreenLogin {
		return m.updateLoginInputs(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	switch m.screen {
	case ScreenLogin:
		b.WriteString(m.renderLogin())
	case ScreenShelves:
		b.WriteString(m.renderShelves())
	case ScreenShelf:
		b.WriteString(m.renderShelf())
	case ScreenBook:
		b.WriteString(m.renderBook())
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancelInFlight()
		return m, tea.Quit
	}
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.screen == ScreenLogin {
		return m.handleLoginKey(msg)
	}

	switch {
	case keyMatches(msg, m.keys.Quit):
		m.cancelInFlight()
		return m, tea.Quit
	case keyMatches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case keyMatches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = m.theme.Name })
		return m, nil
	case keyMatches(msg, m.keys.Logout):
		return m.logout("")
	}

	switch m.screen {
	case ScreenShelves:
		return m.handleShelvesKey(msg)
	case ScreenShelf:
		return m.handleShelfKey(msg)
	case ScreenBook:
		return m.handleBookKey(msg)
	}
	return m, nil
}

// logout clears the session and shows the login form with notice.
func (m Model) logout(notice string) (tea.Model, tea.Cmd) {
	m.cancelInFlight()
	if m.session != nil {
		if err := m.session.MarkLoggedOut(); err != nil {
			m.log.Warn("logout failed", "error", err)
		}
	} else if m.client != nil {
		if err := m.client.Logout(); err != nil {
			m.log.Warn("logout failed", "error", err)
		}
	}
	m.shelves = shelvesState{}
	m.shelf = shelfState{}
	m.book = bookState{viewport: m.book.viewport}
	m.screen = ScreenLogin
	m.login.err = notice
	m.login.busy = false
	m.login.password.SetValue("")
	cmd := m.focusLogin()
	return m, cmd
}

// beginRequest cancels whatever is in flight and returns a context and
// sequence number for a new request.
func (m *Model) beginRequest() (context.Context, uint64) {
	m.cancelInFlight()
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	return ctx, m.reqSeq
}

// cancelInFlight aborts the outstanding request, if any, and invalidates
// its sequence number so a late result is ignored.
func (m *Model) cancelInFlight() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.reqSeq++
}

// finishRequest reports whether seq is the current request, releasing its
// context when it is.
func (m *Model) finishRequest(seq uint64) bool {
	if seq != m.reqSeq {
		return false
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	return true
}

func (m Model) savePrefs(fn func(*prefs.Prefs)) {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Update(m.prefsPath, fn); err != nil {
		m.log.Warn("save prefs failed", "error", err)
	}
}

func (m *Model) resizeBookViewport() {
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	h := m.height - 6
	if h < 5 {
		h = 5
	}
	m.book.viewport.Width = w
	m.book.viewport.Height = h
	if m.book.state == stateLoaded {
		m.book.viewport.SetContent(m.bookContent())
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
