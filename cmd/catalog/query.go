package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"
	"github.com/vito/catalog/pkg/gqlserver"
	"github.com/vito/catalog/pkg/ioctx"
)

func schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the GraphQL schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return gqlserver.FormatSDL(ioctx.StdoutFromContext(cmd.Context()))
		},
	}
}

func queryCmd(globals *Config) *cobra.Command {
	var (
		operation string
		vars      []string
	)

	cmd := &cobra.Command{
		Use:   "query DOCUMENT",
		Short: "Send a GraphQL document to the endpoint and print the data",
		Long: `Sends DOCUMENT (or stdin when DOCUMENT is "-") to the endpoint and prints
the response data as JSON.

Variables are given as name=value. Values that parse as JSON are sent as
such; anything else is sent as a string.`,
		Example: `  catalog query '{ book(id: 1) { name author { name } } }'
  catalog query 'mutation($n: String!) { addAuthor(name: $n) { id } }' --var n=Tolkien`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := ioctx.LoggerFromContext(ctx)

			document := args[0]
			if document == "-" {
				input, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read document: %w", err)
				}
				document = string(input)
			}

			variables, err := parseVars(vars)
			if err != nil {
				return err
			}
			logger.Debug("sending document",
				"operation", operation,
				"variables", fmt.Sprintf("%# v", pretty.Formatter(variables)))

			data, err := newClient(globals).Do(ctx, document, operation, variables)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(ioctx.StdoutFromContext(ctx))
			enc.SetIndent("", "  ")
			return enc.Encode(data)
		},
	}

	cmd.Flags().StringVarP(&operation, "operation", "o", "", "Operation to run when DOCUMENT has several")
	cmd.Flags().StringArrayVar(&vars, "var", nil, "Variable as name=value (repeatable)")

	return cmd
}

func parseVars(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		name, raw, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid variable %q: expected name=value", pair)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		vars[name] = value
	}
	return vars, nil
}
