package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingField is wrapped by decoding errors caused by an absent or null
// required field.
var ErrMissingField = errors.New("missing required field")

// Session is the durable identity returned by a successful login.
type Session struct {
	UserID int64  `json:"user_id"`
	APIKey string `json:"api_key"`
}

// Shelf is a shelf as listed by /api/v1/shelves.
type Shelf struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	BookCount int    `json:"book_count"`
}

// ShelvesResult is the current user's identity plus their shelves.
type ShelvesResult struct {
	User    string  `json:"user"`
	Shelves []Shelf `json:"shelves"`
}

// ShelfDetail is a single shelf with its books. Books is empty when the
// server sent an empty array or no books key at all.
type ShelfDetail struct {
	ID    int64         `json:"id"`
	Name  string        `json:"name"`
	Books []BookSummary `json:"books"`
}

// BookSummary is the lightweight book record used in lists.
type BookSummary struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author,omitempty"`
	ISBN   string `json:"isbn,omitempty"`
}

// BookDetail is the full book record. ShelfName is denormalized by the server
// so the shelf does not need a second fetch.
type BookDetail struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author,omitempty"`
	ISBN      string `json:"isbn,omitempty"`
	ShelfID   int64  `json:"shelf_id"`
	ShelfName string `json:"shelf_name"`
	ImageURL  string `json:"image_url,omitempty"`
	Comments  string `json:"comments,omitempty"`
}

// required records whether a JSON field was present and non-null.
type required[T any] struct {
	value T
	set   bool
}

func (r *required[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, &r.value); err != nil {
		return err
	}
	r.set = true
	return nil
}

type field struct {
	name string
	set  bool
}

func checkFields(object string, fields ...field) error {
	for _, f := range fields {
		if !f.set {
			return fmt.Errorf("%w %q in %s", ErrMissingField, f.name, object)
		}
	}
	return nil
}

// Wire payloads. Optional strings are plain strings: absent and null both
// decode to "".

type sessionPayload struct {
	UserID required[int64]  `json:"user_id"`
	APIKey required[string] `json:"api_key"`
}

func (p sessionPayload) session() (Session, error) {
	if err := checkFields("session",
		field{"user_id", p.UserID.set},
		field{"api_key", p.APIKey.set},
	); err != nil {
		return Session{}, err
	}
	return Session{UserID: p.UserID.value, APIKey: p.APIKey.value}, nil
}

type shelvesPayload struct {
	User    required[string]         `json:"user"`
	Shelves required[[]shelfPayload] `json:"shelves"`
}

type shelfPayload struct {
	ID        required[int64]  `json:"id"`
	Name      required[string] `json:"name"`
	BookCount required[int]    `json:"book_count"`
}

func (p shelvesPayload) result() (ShelvesResult, error) {
	if err := checkFields("shelves response",
		field{"user", p.User.set},
		field{"shelves", p.Shelves.set},
	); err != nil {
		return ShelvesResult{}, err
	}
	out := ShelvesResult{User: p.User.value, Shelves: make([]Shelf, 0, len(p.Shelves.value))}
	for i, s := range p.Shelves.value {
		if err := checkFields(fmt.Sprintf("shelves[%d]", i),
			field{"id", s.ID.set},
			field{"name", s.Name.set},
			field{"book_count", s.BookCount.set},
		); err != nil {
			return ShelvesResult{}, err
		}
		out.Shelves = append(out.Shelves, Shelf{ID: s.ID.value, Name: s.Name.value, BookCount: s.BookCount.value})
	}
	return out, nil
}

type shelfDetailPayload struct {
	Shelf required[shelfInfoPayload] `json:"shelf"`
	Books []bookSummaryPayload       `json:"books"`
}

type shelfInfoPayload struct {
	ID   required[int64]  `json:"id"`
	Name required[string] `json:"name"`
}

type bookSummaryPayload struct {
	ID     required[int64]  `json:"id"`
	Title  required[string] `json:"title"`
	Author string           `json:"author"`
	ISBN   string           `json:"isbn"`
}

func (p shelfDetailPayload) detail() (ShelfDetail, error) {
	if err := checkFields("shelf response", field{"shelf", p.Shelf.set}); err != nil {
		return ShelfDetail{}, err
	}
	info := p.Shelf.value
	if err := checkFields("shelf",
		field{"id", info.ID.set},
		field{"name", info.Name.set},
	); err != nil {
		return ShelfDetail{}, err
	}
	out := ShelfDetail{ID: info.ID.value, Name: info.Name.value, Books: make([]BookSummary, 0, len(p.Books))}
	for i, b := range p.Books {
		if err := checkFields(fmt.Sprintf("books[%d]", i),
			field{"id", b.ID.set},
			field{"title", b.Title.set},
		); err != nil {
			return ShelfDetail{}, err
		}
		out.Books = append(out.Books, BookSummary{
			ID:     b.ID.value,
			Title:  b.Title.value,
			Author: b.Author,
			ISBN:   b.ISBN,
		})
	}
	return out, nil
}

type bookPayload struct {
	Book required[bookDetailPayload] `json:"book"`
}

type bookDetailPayload struct {
	ID        required[int64]  `json:"id"`
	Title     required[string] `json:"title"`
	Author    string           `json:"author"`
	ISBN      string           `json:"isbn"`
	ShelfID   required[int64]  `json:"shelf_id"`
	ShelfName required[string] `json:"shelf_name"`
	ImageURL  string           `json:"image_url"`
	Comments  string           `json:"comments"`
}

func (p bookPayload) detail() (BookDetail, error) {
	if err := checkFields("book response", field{"book", p.Book.set}); err != nil {
		return BookDetail{}, err
	}
	b := p.Book.value
	if err := checkFields("book",
		field{"id", b.ID.set},
		field{"title", b.Title.set},
		field{"shelf_id", b.ShelfID.set},
		field{"shelf_name", b.ShelfName.set},
	); err != nil {
		return BookDetail{}, err
	}
	return BookDetail{
		ID:        b.ID.value,
		Title:     b.Title.value,
		Author:    b.Author,
		ISBN:      b.ISBN,
		ShelfID:   b.ShelfID.value,
		ShelfName: b.ShelfName.value,
		ImageURL:  b.ImageURL,
		Comments:  b.Comments,
	}, nil
}
