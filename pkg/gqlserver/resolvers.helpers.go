package gqlserver

import (
	"context"
	"strconv"

	"github.com/vito/catalog/pkg/catalog"
)

type bookResolver struct {
	store *catalog.Store
	book  catalog.Book
}

type authorResolver struct {
	store  *catalog.Store
	author catalog.Author
}

func (r *Resolver) book(b catalog.Book) *bookResolver {
	return &bookResolver{store: r.store, book: b}
}

func (r *Resolver) author(a catalog.Author) *authorResolver {
	return &authorResolver{store: r.store, author: a}
}

// bookList points at a non-nil slice so that an empty list renders as []
// rather than null. Nullable list fields must resolve to a pointer.
func (r *Resolver) bookList(books []catalog.Book) *[]*bookResolver {
	resolvers := make([]*bookResolver, 0, len(books))
	for _, b := range books {
		resolvers = append(resolvers, r.book(b))
	}
	return &resolvers
}

func (b *bookResolver) ID() int32 {
	return int32(b.book.ID)
}

func (b *bookResolver) Name() string {
	return b.book.Name
}

// AuthorID is exposed as a String! on the wire even though it is stored as
// an int.
func (b *bookResolver) AuthorID() string {
	return strconv.Itoa(b.book.AuthorID)
}

// Author scans the authors for this book's author. Dangling ids resolve to
// null.
func (b *bookResolver) Author(ctx context.Context) *authorResolver {
	author, ok := b.store.AuthorOf(b.book)
	if !ok {
		return nil
	}
	return &authorResolver{store: b.store, author: author}
}

func (a *authorResolver) ID() int32 {
	return int32(a.author.ID)
}

func (a *authorResolver) Name() string {
	return a.author.Name
}

// Books scans the books for those written by this author. Each author does
// its own scan; nothing is batched across siblings.
func (a *authorResolver) Books(ctx context.Context) *[]*bookResolver {
	books := a.store.BooksByAuthor(a.author.ID)
	resolvers := make([]*bookResolver, 0, len(books))
	for _, b := range books {
		resolvers = append(resolvers, &bookResolver{store: a.store, book: b})
	}
	return &resolvers
}
