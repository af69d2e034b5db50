package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/booktracker/internal/api"
	"github.com/five82/booktracker/internal/notes"
)

func newShelvesCommand(flags *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "shelves",
		Short: "List your shelves",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			rt, err := flags.runtime()
			if err != nil {
				return err
			}
			defer closeRuntime(rt, &err)

			result, err := rt.Client.Shelves(cmd.Context())
			if err != nil {
				return expireOnUnauthorized(rt, err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			return printShelves(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newShelfCommand(flags *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "shelf ID",
		Short: "List the books on a shelf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rt, err := flags.runtime()
			if err != nil {
				return err
			}
			defer closeRuntime(rt, &err)

			detail, err := rt.Client.Shelf(cmd.Context(), id)
			if err != nil {
				return expireOnUnauthorized(rt, err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), detail)
			}
			return printShelf(cmd.OutOrStdout(), detail)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newBookCommand(flags *rootFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "book ID",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rt, err := flags.runtime()
			if err != nil {
				return err
			}
			defer closeRuntime(rt, &err)

			book, err := rt.Client.Book(cmd.Context(), id)
			if err != nil {
				return expireOnUnauthorized(rt, err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), book)
			}
			return printBook(cmd.OutOrStdout(), book)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printShelves(w io.Writer, r api.ShelvesResult) error {
	p := &printer{w: w}
	p.printf("User: %s\n\n", r.User)
	if len(r.Shelves) == 0 {
		p.println("You don't have any shelves yet.")
		return p.err
	}
	if p.err != nil {
		return p.err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	t := &printer{w: tw}
	t.println("ID\tNAME\tBOOKS")
	for _, s := range r.Shelves {
		t.printf("%d\t%s\t%d\n", s.ID, s.Name, s.BookCount)
	}
	if t.err != nil {
		return t.err
	}
	return tw.Flush()
}

func printShelf(w io.Writer, d api.ShelfDetail) error {
	p := &printer{w: w}
	p.printf("Shelf: %s\n\n", d.Name)
	if len(d.Books) == 0 {
		p.println("This shelf is empty.")
		return p.err
	}
	if p.err != nil {
		return p.err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	t := &printer{w: tw}
	t.println("ID\tTITLE\tAUTHOR\tISBN")
	for _, b := range d.Books {
		t.printf("%d\t%s\t%s\t%s\n", b.ID, b.Title, orDash(b.Author), orDash(b.ISBN))
	}
	if t.err != nil {
		return t.err
	}
	return tw.Flush()
}

func printBook(w io.Writer, b api.BookDetail) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	t := &printer{w: tw}
	t.printf("ID\t%d\n", b.ID)
	t.printf("Title\t%s\n", b.Title)
	t.printf("Author\t%s\n", orDash(b.Author))
	t.printf("ISBN\t%s\n", orDash(b.ISBN))
	t.printf("Shelf\t%s (%d)\n", b.ShelfName, b.ShelfID)
	t.printf("Cover\t%s\n", orDash(b.ImageURL))
	if t.err != nil {
		return t.err
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if text := notes.PlainText(b.Comments); text != "" {
		p := &printer{w: w}
		p.printf("\n%s\n", text)
		return p.err
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
