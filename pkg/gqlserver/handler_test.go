package gqlserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vito/catalog/pkg/catalog"
)

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func newTestServer(t *testing.T, playground bool) (*httptest.Server, *catalog.Store) {
	t.Helper()
	store := catalog.NewStore(catalog.DefaultSeed())
	mux, err := NewMux(store, Options{Playground: playground})
	require.NoError(t, err)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, store
}

func post(t *testing.T, endpoint string, body string) (int, gqlResponse) {
	t.Helper()
	resp, err := http.Post(endpoint, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode, decode(t, resp.Body)
}

func get(t *testing.T, endpoint string, params url.Values) (int, gqlResponse) {
	t.Helper()
	resp, err := http.Get(endpoint + "?" + params.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode, decode(t, resp.Body)
}

func decode(t *testing.T, r io.Reader) gqlResponse {
	t.Helper()
	var out gqlResponse
	require.NoError(t, json.NewDecoder(r).Decode(&out))
	return out
}

func TestHandlerPost(t *testing.T) {
	server, _ := newTestServer(t, false)

	status, resp := post(t, server.URL+DefaultPath, `{"query":"{ book(id: 3) { name author { name } } }"}`)
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"book":{"name":"The Hobbit","author":{"name":"J. R. R. Tolkien"}}}`, string(resp.Data))
}

func TestHandlerPostVariablesAndOperationName(t *testing.T) {
	server, store := newTestServer(t, false)

	body, err := json.Marshal(Params{
		Query: `
			query Lookup($id: Int) { author(id: $id) { name } }
			mutation Add($name: String!) { addAuthor(name: $name) { id name } }
		`,
		OperationName: "Add",
		Variables:     map[string]any{"name": "Terry Pratchett"},
	})
	require.NoError(t, err)

	status, resp := post(t, server.URL+DefaultPath, string(body))
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"addAuthor":{"id":3,"name":"Terry Pratchett"}}`, string(resp.Data))

	author, ok := store.FindAuthor(3)
	require.True(t, ok)
	assert.Equal(t, "Terry Pratchett", author.Name)
}

func TestHandlerGet(t *testing.T) {
	server, _ := newTestServer(t, false)

	status, resp := get(t, server.URL+DefaultPath, url.Values{
		"query":     {`query($id: Int) { author(id: $id) { id name } }`},
		"variables": {`{"id": 1}`},
	})
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"author":{"id":1,"name":"J. K. Rowling"}}`, string(resp.Data))
}

func TestHandlerGetMutationRejected(t *testing.T) {
	server, store := newTestServer(t, false)

	status, resp := get(t, server.URL+DefaultPath, url.Values{
		"query": {`mutation { addAuthor(name: "sneaky") { id } }`},
	})
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "POST")

	_, authors := store.Len()
	assert.Equal(t, 2, authors)
}

func TestHandlerGetPicksOperation(t *testing.T) {
	server, _ := newTestServer(t, false)

	status, resp := get(t, server.URL+DefaultPath, url.Values{
		"query": {`
			query Read { books { id } }
			mutation Write { addAuthor(name: "x") { id } }
		`},
		"operationName": {"Read"},
	})
	require.Equal(t, http.StatusOK, status)
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"books":[{"id":1},{"id":2},{"id":3},{"id":4}]}`, string(resp.Data))
}

func TestHandlerRequestErrors(t *testing.T) {
	server, _ := newTestServer(t, false)
	endpoint := server.URL + DefaultPath

	t.Run("invalid json", func(t *testing.T) {
		status, resp := post(t, endpoint, `{"query":`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.NotEmpty(t, resp.Errors)
	})

	t.Run("missing query", func(t *testing.T) {
		status, resp := post(t, endpoint, `{}`)
		assert.Equal(t, http.StatusBadRequest, status)
		require.Len(t, resp.Errors, 1)
		assert.Equal(t, "Must provide query string.", resp.Errors[0].Message)
	})

	t.Run("invalid variables", func(t *testing.T) {
		status, resp := get(t, endpoint, url.Values{
			"query":     {`{ books { id } }`},
			"variables": {`{nope`},
		})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.NotEmpty(t, resp.Errors)
	})

	t.Run("unsupported method", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPut, endpoint, strings.NewReader(`{}`))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "GET, POST", resp.Header.Get("Allow"))
	})

	t.Run("validation error", func(t *testing.T) {
		status, resp := post(t, endpoint, `{"query":"mutation { addAuthor { id } }"}`)
		assert.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, resp.Errors)
		assert.Empty(t, resp.Data)
	})
}

func TestHandlerPlayground(t *testing.T) {
	fetch := func(t *testing.T, target string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, target, nil)
		require.NoError(t, err)
		req.Header.Set("Accept", "text/html")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	t.Run("enabled", func(t *testing.T) {
		server, _ := newTestServer(t, true)

		for _, target := range []string{server.URL + "/", server.URL + DefaultPath} {
			resp := fetch(t, target)
			assert.Equal(t, http.StatusOK, resp.StatusCode, target)
			assert.Contains(t, resp.Header.Get("Content-Type"), "text/html", target)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), "Catalog playground")
		}
	})

	t.Run("disabled", func(t *testing.T) {
		server, _ := newTestServer(t, false)

		resp := fetch(t, server.URL+DefaultPath)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		resp = fetch(t, server.URL+"/")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestStartServer(t *testing.T) {
	store := catalog.NewStore(catalog.DefaultSeed())
	server, err := StartServer(store, Options{
		Listen: "127.0.0.1:0",
		Path:   "/query",
	})
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, server.Stop(ctx))
	}()

	assert.True(t, strings.HasSuffix(server.QueryURL(), "/query"))
	assert.True(t, strings.HasPrefix(server.QueryURL(), server.URL()))

	resp, err := http.Post(server.QueryURL(), "application/json",
		bytes.NewBufferString(`{"query":"mutation { addBook(name: \"Y\", authorId: 1) { id } }"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	out := decode(t, resp.Body)
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `{"addBook":{"id":5}}`, string(out.Data))

	books, _ := store.Len()
	assert.Equal(t, 5, books)
}

func TestConcurrentMutations(t *testing.T) {
	server, store := newTestServer(t, false)

	const n = 32
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			resp, err := http.Post(server.URL+DefaultPath, "application/json",
				strings.NewReader(`{"query":"mutation { addAuthor(name: \"w\") { id } }"}`))
			if err == nil {
				resp.Body.Close()
			}
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	authors := store.ListAuthors()
	require.Len(t, authors, 2+n)
	for i, a := range authors {
		assert.Equal(t, i+1, a.ID)
	}
}

func TestHandlerLogsThroughRelay(t *testing.T) {
	var logs bytes.Buffer
	store := catalog.NewStore(catalog.DefaultSeed())
	mux, err := NewMux(store, Options{
		Logger: slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})
	require.NoError(t, err)

	serve := func(req *http.Request) gqlResponse {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		return decode(t, rec.Body)
	}

	resp := serve(httptest.NewRequest(http.MethodPost, DefaultPath, strings.NewReader(
		`{"query":"mutation Add($n: String!) { addAuthor(name: $n) { id } }","operationName":"Add","variables":{"n":"Octavia E. Butler"}}`)))
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"addAuthor":{"id":3}}`, string(resp.Data))

	resp = serve(httptest.NewRequest(http.MethodGet, DefaultPath+"?"+url.Values{
		"query":     {`query One($id: Int) { author(id: $id) { name } }`},
		"variables": {`{"id":3}`},
	}.Encode(), nil))
	require.Empty(t, resp.Errors)
	assert.JSONEq(t, `{"author":{"name":"Octavia E. Butler"}}`, string(resp.Data))

	// resolvers see the request logger
	assert.Contains(t, logs.String(), `msg="added author"`)
	assert.Contains(t, logs.String(), "operation=Add")
	assert.Contains(t, logs.String(), "method=GET")
}
