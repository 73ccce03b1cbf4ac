package catalog

// Seed lists the records a store starts out with. Ids are not part of the
// seed; they follow from position.
type Seed struct {
	Authors []SeedAuthor `toml:"authors"`
	Books   []SeedBook   `toml:"books"`
}

type SeedAuthor struct {
	Name string `toml:"name"`
}

type SeedBook struct {
	Name     string `toml:"name"`
	AuthorID int    `toml:"author_id"`
}

// DefaultSeed returns the records the service has always started with.
func DefaultSeed() Seed {
	return Seed{
		Authors: []SeedAuthor{
			{Name: "J. K. Rowling"},
			{Name: "J. R. R. Tolkien"},
		},
		Books: []SeedBook{
			{Name: "Harry Potter 1", AuthorID: 1},
			{Name: "Harry Potter 2", AuthorID: 1},
			{Name: "The Hobbit", AuthorID: 2},
			{Name: "Leaf by Niggle", AuthorID: 2},
		},
	}
}
