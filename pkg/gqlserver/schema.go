package gqlserver

import (
	_ "embed"
	"fmt"
	"io"

	"github.com/graph-gophers/graphql-go"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vito/catalog/pkg/catalog"
)

// SDL is the schema served by the catalog endpoint.
//
//go:embed schema.graphql
var SDL string

// SchemaOptions tune how queries are executed.
type SchemaOptions struct {
	// MaxDepth limits selection depth. Zero means unlimited.
	MaxDepth int

	// DisableIntrospection rejects __schema and __type queries.
	DisableIntrospection bool
}

// NewSchema binds the catalog resolvers to the SDL.
func NewSchema(store *catalog.Store, opts SchemaOptions) (*graphql.Schema, error) {
	// validate the SDL before handing it to the executor
	if _, err := LoadAST(); err != nil {
		return nil, err
	}

	var schemaOpts []graphql.SchemaOpt
	if opts.MaxDepth > 0 {
		schemaOpts = append(schemaOpts, graphql.MaxDepth(opts.MaxDepth))
	}
	if opts.DisableIntrospection {
		schemaOpts = append(schemaOpts, graphql.DisableIntrospection())
	}

	schema, err := graphql.ParseSchema(SDL, NewResolver(store), schemaOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return schema, nil
}

// LoadAST parses and validates the SDL.
func LoadAST() (*ast.Schema, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{
		Name:  "schema.graphql",
		Input: SDL,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return schema, nil
}

// FormatSDL writes the normalized schema to w.
func FormatSDL(w io.Writer) error {
	schema, err := LoadAST()
	if err != nil {
		return err
	}
	formatter.NewFormatter(w).FormatSchema(schema)
	return nil
}
