package gqlserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vito/catalog/pkg/ioctx"
)

// Handler serves GraphQL requests over HTTP. Queries are accepted as GET or
// POST; mutations only as POST. Execution is handed to relay.Handler once
// the request has been checked.
type Handler struct {
	Schema *graphql.Schema
	Logger *slog.Logger

	// Playground, if set, is served for browser GETs that carry no query.
	Playground http.Handler
}

// Params is the body of a GraphQL request.
type Params struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := h.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var params Params
	var body []byte
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		params.Query = q.Get("query")
		params.OperationName = q.Get("operationName")
		if vars := q.Get("variables"); vars != "" {
			if err := json.Unmarshal([]byte(vars), &params.Variables); err != nil {
				writeError(w, http.StatusBadRequest, "Variables are invalid JSON.")
				return
			}
		}
		if params.Query == "" && h.Playground != nil && acceptsHTML(r) {
			h.Playground.ServeHTTP(w, r)
			return
		}
	case http.MethodPost:
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Failed to read POST body.")
			return
		}
		if err := json.Unmarshal(body, &params); err != nil {
			writeError(w, http.StatusBadRequest, "POST body sent invalid JSON.")
			return
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "GraphQL only supports GET and POST requests.")
		return
	}

	if params.Query == "" {
		writeError(w, http.StatusBadRequest, "Must provide query string.")
		return
	}

	if r.Method == http.MethodGet {
		if isMutation(params.Query, params.OperationName) {
			w.Header().Set("Allow", "POST")
			writeError(w, http.StatusMethodNotAllowed, "Can only perform a mutation operation from a POST request.")
			return
		}
		var err error
		body, err = json.Marshal(params)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	// relay only reads JSON bodies, so GETs are replayed as a POST body
	exec := r.Clone(ioctx.LoggerToContext(r.Context(), logger))
	exec.Method = http.MethodPost
	exec.Body = io.NopCloser(bytes.NewReader(body))
	exec.ContentLength = int64(len(body))

	start := time.Now()
	(&relay.Handler{Schema: h.Schema}).ServeHTTP(w, exec)
	logger.DebugContext(exec.Context(), "graphql request",
		"method", r.Method,
		"operation", params.OperationName,
		"duration", time.Since(start))
}

// isMutation reports whether the operation that would run is a mutation.
// Documents that don't parse are left for the executor to report.
func isMutation(query, operationName string) bool {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return false
	}
	op := doc.Operations.ForName(operationName)
	return op != nil && op.Operation == ast.Mutation
}

func acceptsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, &graphql.Response{
		Errors: []*gqlerrors.QueryError{gqlerrors.Errorf("%s", msg)},
	})
}

func writeJSON(w http.ResponseWriter, status int, response *graphql.Response) {
	payload, err := json.Marshal(response)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
