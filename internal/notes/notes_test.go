package notes

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "   ", ""},
		{"plain", "just text", "just text"},
		{"inline tags keep spacing", "a <b>bold</b> <i>move</i>", "a bold move"},
		{"paragraphs", "<p>one</p><p>two</p>", "one\n\ntwo"},
		{"line break", "first<br>second<br/>third", "first\nsecond\nthird"},
		{"list", "<ul><li>alpha</li><li>beta</li></ul>", "• alpha\n• beta"},
		{"entities", "Tom &amp; Jerry", "Tom & Jerry"},
		{"whitespace runs", "<p>  lots \n\n of   space </p>", "lots of space"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.in); got != tt.want {
				t.Fatalf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
