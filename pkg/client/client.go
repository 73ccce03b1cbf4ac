// Package client talks to a catalog GraphQL endpoint.
package client

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/Khan/genqlient/graphql"
	"github.com/iancoleman/strcase"
	"github.com/vito/catalog/pkg/querybuilder"
)

// DefaultEndpoint is where `catalog serve` listens without configuration.
const DefaultEndpoint = "http://localhost:5000/graphql"

// Config holds configuration for connecting to a catalog endpoint
type Config struct {
	Endpoint string

	// Authorization header value (e.g., "Bearer token123")
	Authorization string

	// Headers contains additional HTTP headers to send with requests
	Headers map[string]string
}

// LoadConfig loads client configuration from environment variables.
//
// Additional headers use the form CATALOG_HEADER_<NAME>=<value>, where
// underscores in NAME become dashes.
func LoadConfig() Config {
	config := Config{
		Endpoint:      os.Getenv("CATALOG_ENDPOINT"),
		Authorization: os.Getenv("CATALOG_AUTHORIZATION"),
		Headers:       make(map[string]string),
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}

	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "CATALOG_HEADER_") {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 {
				headerName := strcase.ToScreamingKebab(strings.TrimPrefix(parts[0], "CATALOG_HEADER_"))
				config.Headers[headerName] = parts[1]
			}
		}
	}

	return config
}

type Book struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	AuthorID string  `json:"authorId"`
	Author   *Author `json:"author,omitempty"`
}

type Author struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Books []Book `json:"books,omitempty"`
}

// Client is a typed wrapper around a GraphQL client for the catalog schema.
type Client struct {
	gql graphql.Client
}

// New creates a client for the configured endpoint.
func New(config Config) *Client {
	httpClient := &http.Client{
		Transport: &customTransport{
			base:          http.DefaultTransport,
			authorization: config.Authorization,
			headers:       config.Headers,
		},
	}
	return &Client{gql: graphql.NewClient(config.Endpoint, httpClient)}
}

// NewFromGraphQL wraps an existing GraphQL client.
func NewFromGraphQL(gql graphql.Client) *Client {
	return &Client{gql: gql}
}

var (
	bookFields   = []string{"id", "name", "authorId"}
	authorFields = []string{"id", "name"}
)

// Books lists every book along with its author.
func (c *Client) Books(ctx context.Context) ([]Book, error) {
	var books []Book
	err := querybuilder.Query().Client(c.gql).
		Select("books").
		SelectMixed(bookFields, map[string]*querybuilder.QueryBuilder{
			"author": querybuilder.Query().SelectFields(authorFields...),
		}).
		Bind(&books).
		Execute(ctx)
	return books, err
}

// Authors lists every author. With withBooks each author's books are
// included.
func (c *Client) Authors(ctx context.Context, withBooks bool) ([]Author, error) {
	nested := map[string]*querybuilder.QueryBuilder{}
	if withBooks {
		nested["books"] = querybuilder.Query().SelectFields(bookFields...)
	}

	var authors []Author
	err := querybuilder.Query().Client(c.gql).
		Select("authors").
		SelectMixed(authorFields, nested).
		Bind(&authors).
		Execute(ctx)
	return authors, err
}

// Book looks up a single book. A missing book yields nil without error.
func (c *Client) Book(ctx context.Context, id int) (*Book, error) {
	var book *Book
	err := querybuilder.Query().Client(c.gql).
		Select("book").Arg("id", id).
		SelectMixed(bookFields, map[string]*querybuilder.QueryBuilder{
			"author": querybuilder.Query().SelectFields(authorFields...),
		}).
		Bind(&book).
		Execute(ctx)
	return book, err
}

// Author looks up a single author with their books. A missing author yields
// nil without error.
func (c *Client) Author(ctx context.Context, id int) (*Author, error) {
	var author *Author
	err := querybuilder.Query().Client(c.gql).
		Select("author").Arg("id", id).
		SelectMixed(authorFields, map[string]*querybuilder.QueryBuilder{
			"books": querybuilder.Query().SelectFields(bookFields...),
		}).
		Bind(&author).
		Execute(ctx)
	return author, err
}

func (c *Client) AddAuthor(ctx context.Context, name string) (*Author, error) {
	var author Author
	err := querybuilder.Mutation().Client(c.gql).
		Select("addAuthor").Arg("name", name).
		SelectFields(authorFields...).
		Bind(&author).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	return &author, nil
}

func (c *Client) AddBook(ctx context.Context, name string, authorID int) (*Book, error) {
	var book Book
	err := querybuilder.Mutation().Client(c.gql).
		Select("addBook").Arg("name", name).Arg("authorId", authorID).
		SelectFields(bookFields...).
		Bind(&book).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Do sends a raw document and returns the decoded data.
func (c *Client) Do(ctx context.Context, query, opName string, variables map[string]any) (any, error) {
	var data any
	req := &graphql.Request{
		Query:  query,
		OpName: opName,
	}
	if len(variables) > 0 {
		req.Variables = variables
	}
	err := c.gql.MakeRequest(ctx, req, &graphql.Response{Data: &data})
	return data, err
}

// customTransport wraps http.RoundTripper to add custom headers
type customTransport struct {
	base          http.RoundTripper
	authorization string
	headers       map[string]string
}

func (t *customTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())

	if t.authorization != "" {
		req.Header.Set("Authorization", t.authorization)
	}

	for key, value := range t.headers {
		req.Header.Set(key, value)
	}

	return t.base.RoundTrip(req)
}
