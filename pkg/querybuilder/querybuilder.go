package querybuilder

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Khan/genqlient/graphql"
	"golang.org/x/sync/errgroup"
)

// QueryBuilder represents a GraphQL document built as a chain of selections
type QueryBuilder struct {
	name  string
	alias string
	args  map[string]*argument
	bind  any

	// operation is only set on the root of a chain
	operation string

	// Support for multi-field selections
	fields        []string
	subSelections map[string]*QueryBuilder

	prev *QueryBuilder

	client graphql.Client
}

// Query creates a new QueryBuilder for a query operation
func Query() *QueryBuilder {
	return &QueryBuilder{operation: "query"}
}

// Mutation creates a new QueryBuilder for a mutation operation
func Mutation() *QueryBuilder {
	return &QueryBuilder{operation: "mutation"}
}

func (q *QueryBuilder) path() []*QueryBuilder {
	selections := []*QueryBuilder{}
	for sel := q; sel.prev != nil; sel = sel.prev {
		selections = append([]*QueryBuilder{sel}, selections...)
	}
	return selections
}

func (q *QueryBuilder) root() *QueryBuilder {
	sel := q
	for sel.prev != nil {
		sel = sel.prev
	}
	return sel
}

func (q *QueryBuilder) SelectWithAlias(alias, name string) *QueryBuilder {
	return &QueryBuilder{
		name:   name,
		prev:   q,
		alias:  alias,
		client: q.client,
	}
}

func (q *QueryBuilder) Select(name string) *QueryBuilder {
	return q.SelectWithAlias("", name)
}

// SelectFields selects multiple leaf fields at the current level
func (q *QueryBuilder) SelectFields(fields ...string) *QueryBuilder {
	return q.SelectMixed(fields, nil)
}

// SelectMixed selects leaf fields and nested selections at the same level
func (q *QueryBuilder) SelectMixed(simpleFields []string, nestedSelections map[string]*QueryBuilder) *QueryBuilder {
	if nestedSelections == nil {
		nestedSelections = map[string]*QueryBuilder{}
	}
	return &QueryBuilder{
		prev:          q,
		client:        q.client,
		fields:        simpleFields,
		subSelections: nestedSelections,
	}
}

func (q *QueryBuilder) Arg(name string, value any) *QueryBuilder {
	sel := *q
	args := make(map[string]*argument, len(q.args)+1)
	for k, v := range q.args {
		args[k] = v
	}
	args[name] = &argument{value: value}
	sel.args = args
	return &sel
}

func (q *QueryBuilder) Bind(v any) *QueryBuilder {
	sel := *q
	sel.bind = v
	return &sel
}

func (q *QueryBuilder) Client(c graphql.Client) *QueryBuilder {
	sel := *q
	sel.client = c
	return &sel
}

func (q *QueryBuilder) marshalArguments(ctx context.Context) error {
	eg, gctx := errgroup.WithContext(ctx)
	for _, sel := range q.path() {
		for _, arg := range sel.args {
			eg.Go(func() error {
				return arg.marshal(gctx)
			})
		}
	}
	return eg.Wait()
}

// Build renders the selection set. Arguments and nested selections are
// written in name order.
func (q *QueryBuilder) Build(ctx context.Context) (string, error) {
	if err := q.marshalArguments(ctx); err != nil {
		return "", err
	}

	var b strings.Builder

	path := q.path()

	for i, sel := range path {
		isGroup := len(sel.fields) > 0 || len(sel.subSelections) > 0
		if isGroup && i != len(path)-1 {
			return "", fmt.Errorf("field group must end the chain")
		}

		b.WriteRune('{')

		if isGroup {
			for i, field := range sel.fields {
				if i > 0 {
					b.WriteRune(' ')
				}
				b.WriteString(field)
			}

			needSpace := len(sel.fields) > 0
			for _, field := range sortedKeys(sel.subSelections) {
				if needSpace {
					b.WriteRune(' ')
				}
				b.WriteString(field)
				if subSel := sel.subSelections[field]; subSel != nil {
					subQuery, err := subSel.Build(ctx)
					if err != nil {
						return "", err
					}
					b.WriteString(subQuery)
				}
				needSpace = true
			}
			continue
		}

		if sel.alias != "" {
			b.WriteString(sel.alias)
			b.WriteRune(':')
		}

		b.WriteString(sel.name)

		if len(sel.args) > 0 {
			b.WriteRune('(')
			for i, name := range sortedKeys(sel.args) {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(name)
				b.WriteRune(':')
				b.WriteString(sel.args[name].marshalled)
			}
			b.WriteRune(')')
		}
	}

	b.WriteString(strings.Repeat("}", len(path)))
	return b.String(), nil
}

func (q *QueryBuilder) unpack(data any) error {
	for _, sel := range q.path() {
		// field groups bind at the current level
		if len(sel.fields) > 0 || len(sel.subSelections) > 0 {
			if sel.bind != nil {
				if err := rebind(data, sel.bind); err != nil {
					return err
				}
			}
			continue
		}

		k := sel.name
		if sel.alias != "" {
			k = sel.alias
		}
		if f, ok := data.(map[string]any); ok {
			data = f[k]
		}

		if sel.bind != nil {
			if err := rebind(data, sel.bind); err != nil {
				return err
			}
		}
	}

	return nil
}

func rebind(data, dest any) error {
	marshalled, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(marshalled, dest)
}

// Execute sends the document through the configured client and unpacks the
// response into any bound values.
func (q *QueryBuilder) Execute(ctx context.Context) error {
	if q.client == nil {
		return fmt.Errorf("no client configured for selection")
	}

	query, err := q.Build(ctx)
	if err != nil {
		return err
	}

	op := q.root().operation
	if op == "" {
		op = "query"
	}
	opName := strings.ToUpper(op[:1]) + op[1:]

	var response any
	err = q.client.MakeRequest(ctx,
		&graphql.Request{
			Query:  op + " " + opName + " " + query,
			OpName: opName,
		},
		&graphql.Response{Data: &response},
	)
	if err != nil {
		return err
	}

	return q.unpack(response)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type argument struct {
	value any

	marshalled    string
	marshalledErr error
	once          sync.Once
}

func (a *argument) marshal(ctx context.Context) error {
	a.once.Do(func() {
		a.marshalled, a.marshalledErr = MarshalGQL(ctx, a.value)
	})
	return a.marshalledErr
}
