// Package ui provides the terminal user interface for booktracker.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. Model holds all state; Update handles key
// presses and request results; View renders the current screen. Network work
// runs in tea.Cmd functions that call the api.Fetcher and return a message.
//
// # Screens
//
//   - Login: email and masked password form
//   - Shelves: the user's shelves with book counts
//   - Shelf: the books on one shelf
//   - Book: scrollable details, with HTML comments flattened to text
//
// Which screen opens first is decided by session.Controller.Authenticated.
//
// # Loading State
//
// Every data screen moves through idle, loading, loaded and failed. Failures
// are shown as short messages with a manual retry key; nothing is retried
// automatically. An Unauthorized error logs the session out and returns to
// the login form.
//
// Only one request is outstanding at a time. Starting a new one, or leaving
// the screen that started it, cancels the previous context and bumps a
// sequence number so a late result is discarded.
//
// # Keyboard Shortcuts
//
//	Navigation:
//	  j/k, ↑/↓    Move selection / scroll
//	  g/G         Top / bottom
//	  enter, l    Open
//	  esc, h      Back
//
//	Actions:
//	  r           Reload the current screen
//	  L           Log out
//	  T           Cycle theme
//	  ?           Help
//	  q           Quit
//
// # Themes
//
// Nightfox, Kanagawa and Slate are built in. The chosen theme is saved to
// the prefs file along with the last email used to log in.
package ui
