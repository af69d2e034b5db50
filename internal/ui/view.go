package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/booktracker/internal/notes"
)

// renderHeader renders the title bar with a breadcrumb for the screen.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	parts := []string{styles.Logo.Render("booktracker")}

	switch m.screen {
	case ScreenLogin:
		parts = append(parts, styles.MutedText.Render("Log in"))
	case ScreenShelves:
		parts = append(parts, styles.MutedText.Render("Shelves"))
		if m.shelves.user != "" {
			parts = append(parts, styles.AccentText.Render(m.shelves.user))
		}
	case ScreenShelf:
		parts = append(parts, styles.MutedText.Render("Shelves"), styles.Text.Render(m.shelf.name))
	case ScreenBook:
		parts = append(parts, styles.MutedText.Render(m.shelf.name), styles.Text.Render(m.book.title))
	}

	sep := styles.FaintText.Render(" › ")
	width := m.width
	if width <= 0 {
		width = 80
	}
	return styles.Header.Width(width).Render(strings.Join(parts, sep))
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	if m.screen == ScreenLogin {
		return styles.Footer.Render(m.help.View(loginHelp{m.keys}))
	}
	return styles.Footer.Render(m.help.View(m.keys))
}

func (m Model) renderHelp() string {
	styles := m.theme.Styles()
	title := styles.Title.Render("Keys")
	body := m.help.FullHelpView(m.keys.FullHelp())
	hint := styles.FaintText.Render("press any key to close")
	return styles.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hint))
}

func (m Model) renderShelves() string {
	styles := m.theme.Styles()
	switch m.shelves.state {
	case stateIdle, stateLoading:
		return m.renderLoading("Loading shelves…")
	case stateFailed:
		return m.renderFailure(m.shelves.err)
	}
	if len(m.shelves.shelves) == 0 {
		return styles.MutedText.Render("You don't have any shelves yet.")
	}

	rows := make([]listRow, len(m.shelves.shelves))
	for i, s := range m.shelves.shelves {
		rows[i] = listRow{title: s.Name, detail: pluralBooks(s.BookCount)}
	}
	return m.renderList(rows, m.shelves.cursor)
}

func (m Model) renderShelf() string {
	styles := m.theme.Styles()
	switch m.shelf.state {
	case stateIdle, stateLoading:
		return m.renderLoading("Loading shelf…")
	case stateFailed:
		return m.renderFailure(m.shelf.err)
	}
	books := m.shelf.detail.Books
	if len(books) == 0 {
		return styles.MutedText.Render("This shelf is empty.")
	}

	rows := make([]listRow, len(books))
	for i, b := range books {
		rows[i] = listRow{title: b.Title, detail: b.Author}
	}
	return m.renderList(rows, m.shelf.cursor)
}

func (m Model) renderBook() string {
	switch m.book.state {
	case stateIdle, stateLoading:
		return m.renderLoading("Loading book details…")
	case stateFailed:
		return m.renderFailure(m.book.err)
	}
	return m.book.viewport.View()
}

// bookContent lays out the loaded book for the viewport.
func (m Model) bookContent() string {
	styles := m.theme.Styles()
	b := m.book.book

	field := func(label, value string) string {
		if value == "" {
			value = styles.FaintText.Render("-")
		} else {
			value = styles.Text.Render(value)
		}
		return styles.Label.Render(label) + value
	}

	lines := []string{
		styles.Title.Render(b.Title),
		"",
		field("Author", b.Author),
		field("ISBN", b.ISBN),
		field("Shelf", b.ShelfName),
		field("Cover", b.ImageURL),
	}

	if text := notes.PlainText(b.Comments); text != "" {
		width := m.book.viewport.Width
		if width <= 0 {
			width = 80
		}
		lines = append(lines, "", styles.MutedText.Render("Comments"), "",
			styles.Text.Width(width).Render(text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLoading(text string) string {
	return m.spinner.View() + " " + m.theme.Styles().MutedText.Render(text)
}

func (m Model) renderFailure(text string) string {
	styles := m.theme.Styles()
	hint := fmt.Sprintf("press %s to retry", m.keys.Retry.Help().Key)
	return styles.DangerText.Render(text) + "\n\n" + styles.FaintText.Render(hint)
}

type listRow struct {
	title  string
	detail string
}

// renderList draws rows with the cursor row highlighted, scrolled so the
// cursor stays on screen.
func (m Model) renderList(rows []listRow, cursor int) string {
	styles := m.theme.Styles()

	visible := m.height - 6
	if visible < 3 {
		visible = len(rows)
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := min(len(rows), start+visible)

	titleWidth := 0
	for _, r := range rows[start:end] {
		titleWidth = max(titleWidth, lipgloss.Width(r.title))
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		r := rows[i]
		pad := strings.Repeat(" ", titleWidth-lipgloss.Width(r.title))
		if i == cursor {
			line := "› " + r.title + pad + "  " + r.detail
			b.WriteString(styles.Selected.Render(line))
		} else {
			b.WriteString("  " + styles.Text.Render(r.title) + pad + "  " + styles.MutedText.Render(r.detail))
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	if len(rows) > visible && visible > 0 {
		b.WriteString("\n" + styles.FaintText.Render(fmt.Sprintf("%d/%d", cursor+1, len(rows))))
	}
	return b.String()
}
