package gqlserver

import (
	"context"

	"github.com/vito/catalog/pkg/catalog"
	"github.com/vito/catalog/pkg/ioctx"
)

// Resolver is the root resolver for both queries and mutations.
type Resolver struct {
	store *catalog.Store
}

func NewResolver(store *catalog.Store) *Resolver {
	return &Resolver{store: store}
}

// Book is the resolver for the book field.
func (r *Resolver) Book(ctx context.Context, args struct{ ID *int32 }) *bookResolver {
	if args.ID == nil {
		return nil
	}
	book, ok := r.store.FindBook(int(*args.ID))
	if !ok {
		return nil
	}
	return r.book(book)
}

// Author is the resolver for the author field.
func (r *Resolver) Author(ctx context.Context, args struct{ ID *int32 }) *authorResolver {
	if args.ID == nil {
		return nil
	}
	author, ok := r.store.FindAuthor(int(*args.ID))
	if !ok {
		return nil
	}
	return r.author(author)
}

// Books is the resolver for the books field.
func (r *Resolver) Books(ctx context.Context) *[]*bookResolver {
	return r.bookList(r.store.ListBooks())
}

// Authors is the resolver for the authors field.
func (r *Resolver) Authors(ctx context.Context) *[]*authorResolver {
	authors := r.store.ListAuthors()
	resolvers := make([]*authorResolver, 0, len(authors))
	for _, a := range authors {
		resolvers = append(resolvers, r.author(a))
	}
	return &resolvers
}

// AddBook is the resolver for the addBook field.
func (r *Resolver) AddBook(ctx context.Context, args struct {
	Name     string
	AuthorID int32
}) *bookResolver {
	book := r.store.AppendBook(args.Name, int(args.AuthorID))
	ioctx.LoggerFromContext(ctx).DebugContext(ctx, "added book",
		"id", book.ID,
		"name", book.Name,
		"authorId", book.AuthorID)
	return r.book(book)
}

// AddAuthor is the resolver for the addAuthor field.
func (r *Resolver) AddAuthor(ctx context.Context, args struct{ Name string }) *authorResolver {
	author := r.store.AppendAuthor(args.Name)
	ioctx.LoggerFromContext(ctx).DebugContext(ctx, "added author",
		"id", author.ID,
		"name", author.Name)
	return r.author(author)
}
