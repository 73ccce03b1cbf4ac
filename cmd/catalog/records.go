package main

import (
	"fmt"
	"io"
	"strconv"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"github.com/vito/catalog/pkg/client"
	"github.com/vito/catalog/pkg/ioctx"
)

var (
	idStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	nameStyle = lipgloss.NewStyle().Bold(true)
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("249"))
)

func booksCmd(globals *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "books",
		Short: "List all books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := newClient(globals).Books(cmd.Context())
			if err != nil {
				return err
			}
			w := ioctx.StdoutFromContext(cmd.Context())
			for _, b := range books {
				writeBook(w, b, "")
			}
			return nil
		},
	}
}

func bookCmd(globals *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "book ID",
		Short: "Show a single book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			book, err := newClient(globals).Book(cmd.Context(), id)
			if err != nil {
				return err
			}
			if book == nil {
				return fmt.Errorf("book %d not found", id)
			}
			writeBook(ioctx.StdoutFromContext(cmd.Context()), *book, "")
			return nil
		},
	}
}

func authorsCmd(globals *Config) *cobra.Command {
	var withBooks bool

	cmd := &cobra.Command{
		Use:   "authors",
		Short: "List all authors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			authors, err := newClient(globals).Authors(cmd.Context(), withBooks)
			if err != nil {
				return err
			}
			w := ioctx.StdoutFromContext(cmd.Context())
			for _, a := range authors {
				writeAuthor(w, a, withBooks)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&withBooks, "with-books", "b", false, "Include each author's books")

	return cmd
}

func authorCmd(globals *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "author ID",
		Short: "Show a single author and their books",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[0], err)
			}
			author, err := newClient(globals).Author(cmd.Context(), id)
			if err != nil {
				return err
			}
			if author == nil {
				return fmt.Errorf("author %d not found", id)
			}
			writeAuthor(ioctx.StdoutFromContext(cmd.Context()), *author, true)
			return nil
		},
	}
}

func addAuthorCmd(globals *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "add-author NAME",
		Short: "Add an author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			author, err := newClient(globals).AddAuthor(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeAuthor(ioctx.StdoutFromContext(cmd.Context()), *author, false)
			return nil
		},
	}
}

func addBookCmd(globals *Config) *cobra.Command {
	var authorID int

	cmd := &cobra.Command{
		Use:   "add-book NAME",
		Short: "Add a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := newClient(globals).AddBook(cmd.Context(), args[0], authorID)
			if err != nil {
				return err
			}
			writeBook(ioctx.StdoutFromContext(cmd.Context()), *book, "")
			return nil
		},
	}

	cmd.Flags().IntVarP(&authorID, "author-id", "a", 0, "Id of the book's author (not checked)")
	_ = cmd.MarkFlagRequired("author-id")

	return cmd
}

// writeBook and writeAuthor go through lipgloss so that styles are dropped
// when w is not a terminal.
func writeBook(w io.Writer, b client.Book, indent string) {
	line := indent + idStyle.Render(fmt.Sprintf("#%d", b.ID)) + " " + nameStyle.Render(b.Name)
	if b.Author != nil {
		line += dimStyle.Render(" by " + b.Author.Name)
	} else if indent == "" {
		line += dimStyle.Render(" by author #" + b.AuthorID)
	}
	_, _ = lipgloss.Fprintln(w, line)
}

func writeAuthor(w io.Writer, a client.Author, withBooks bool) {
	_, _ = lipgloss.Fprintln(w, idStyle.Render(fmt.Sprintf("#%d", a.ID))+" "+nameStyle.Render(a.Name))
	if !withBooks {
		return
	}
	if len(a.Books) == 0 {
		_, _ = lipgloss.Fprintln(w, dimStyle.Render("  (no books)"))
		return
	}
	for _, b := range a.Books {
		writeBook(w, b, "  ")
	}
}
