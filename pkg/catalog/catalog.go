// Package catalog holds the in-memory author and book collections served by
// the GraphQL endpoint.
package catalog

import (
	"sync"

	"github.com/samber/lo"
)

// Book is a single book record. AuthorID refers to an Author by id, but the
// reference is never checked: it may dangle.
type Book struct {
	ID       int
	Name     string
	AuthorID int
}

// Author is a single author record.
type Author struct {
	ID   int
	Name string
}

// Store owns the book and author collections. Both collections are
// append-only and keep insertion order.
//
// Ids are assigned as the collection length plus one at insertion time. This
// only stays unique because nothing is ever removed.
type Store struct {
	mu      sync.RWMutex
	books   []Book
	authors []Author
}

// NewStore creates a store populated from the given seed. Seed records are
// appended in order, so they receive ids 1..n.
func NewStore(seed Seed) *Store {
	s := &Store{}
	for _, a := range seed.Authors {
		s.AppendAuthor(a.Name)
	}
	for _, b := range seed.Books {
		s.AppendBook(b.Name, b.AuthorID)
	}
	return s
}

// FindBook returns the first book with the given id.
func (s *Store) FindBook(id int) (Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Find(s.books, func(b Book) bool {
		return b.ID == id
	})
}

// FindAuthor returns the first author with the given id.
func (s *Store) FindAuthor(id int) (Author, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Find(s.authors, func(a Author) bool {
		return a.ID == id
	})
}

// ListBooks returns a snapshot of every book in insertion order.
func (s *Store) ListBooks() []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Book{}, s.books...)
}

// ListAuthors returns a snapshot of every author in insertion order.
func (s *Store) ListAuthors() []Author {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Author{}, s.authors...)
}

// AppendBook adds a new book and returns it. The author id is stored as
// given.
func (s *Store) AppendBook(name string, authorID int) Book {
	s.mu.Lock()
	defer s.mu.Unlock()
	book := Book{
		ID:       len(s.books) + 1,
		Name:     name,
		AuthorID: authorID,
	}
	s.books = append(s.books, book)
	return book
}

// AppendAuthor adds a new author and returns it.
func (s *Store) AppendAuthor(name string) Author {
	s.mu.Lock()
	defer s.mu.Unlock()
	author := Author{
		ID:   len(s.authors) + 1,
		Name: name,
	}
	s.authors = append(s.authors, author)
	return author
}

// AuthorOf scans the authors for the one the book refers to.
func (s *Store) AuthorOf(book Book) (Author, bool) {
	return s.FindAuthor(book.AuthorID)
}

// BooksByAuthor scans the books for those written by the given author,
// keeping insertion order. The result is never nil.
func (s *Store) BooksByAuthor(authorID int) []Book {
	s.mu.RLock()
	defer s.mu.RUnlock()
	books := lo.Filter(s.books, func(b Book, _ int) bool {
		return b.AuthorID == authorID
	})
	if books == nil {
		books = []Book{}
	}
	return books
}

// Len reports the number of books and authors.
func (s *Store) Len() (books, authors int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books), len(s.authors)
}
