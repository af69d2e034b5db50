// Package api provides the authenticated HTTP client for the book-shelving
// service.
//
// # Overview
//
// The client owns every network contract the rest of booktracker depends on:
// session acquisition, credential persistence, request construction, response
// decoding and the error taxonomy screens map to messages.
//
// The package is split into three files:
//
//   - client.go: Client, request construction and response validation
//   - types.go: the typed data model and the wire payloads it is decoded from
//   - errors.go: the closed error taxonomy
//
// # Client Usage
//
//	store := credstore.NewKeyringStore("")
//	client, err := api.NewClient("http://localhost:3000", store)
//	if err != nil {
//		log.Fatalf("create client: %v", err)
//	}
//
//	if _, err := client.Login(ctx, "a@b.com", "pw"); err != nil {
//		log.Printf("login failed: %v", err)
//	}
//
//	shelves, err := client.Shelves(ctx)
//
// # API Endpoints
//
//   - POST /api/v1/sessions: JSON {email, password} -> {user_id, api_key}
//   - GET /api/v1/shelves: {user, shelves: [{id, name, book_count}]}
//   - GET /api/v1/shelves/{id}: {shelf: {id, name}, books?: [...]}
//   - GET /api/v1/books/{id}: {book: {...}}
//
// Authenticated endpoints receive api_key and user_id as query parameters.
// They are read from the credential store before every call; nothing about
// the session is cached in the Client.
//
// # Error Handling
//
// Every failure is an *Error whose Kind is one of:
//
//   - KindInvalidRequest: the request could not be built
//   - KindInvalidResponse: the transport failed (refused, timeout, dropped)
//   - KindUnauthorized: no stored credentials, or the server answered 401
//   - KindServer: any other non-200 status, with StatusCode preserved
//   - KindDecoding: a 200 body that does not match the expected shape
//
// Use errors.Is with the Err* sentinels, or KindOf for an exhaustive switch.
// A decoding error wraps its cause; a missing required field wraps
// ErrMissingField.
//
// The client never retries and never recovers locally. Login writes the
// credential store only after full success; Logout clears it unconditionally.
//
// # Thread Safety
//
// Client is safe for concurrent use. Concurrent calls run independently; there
// is no deduplication.
package api
