package vector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"taskmind/config"
	"taskmind/database"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeaviatePutAndNear(t *testing.T) {
	var created []map[string]interface{}
	var lastQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/objects":
			var obj map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&obj))
			created = append(created, obj)
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"id":"00000000-0000-0000-0000-000000000001"}`))
		case "/v1/graphql":
			var body struct {
				Query string `json:"query"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			lastQuery = body.Query
			_, _ = w.Write([]byte(`{"data":{"Get":{"Knowledge":[{"content":"rates rose"}]}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	store, err := NewWeaviate(srv.URL+"/", "Knowledge", srv.Client())
	require.NoError(t, err)

	err = store.Put(context.Background(), []Document{{Content: "rates rose", URL: "https://example.com/news"}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Equal(t, "Knowledge", created[0]["class"])
	require.Equal(t, map[string]interface{}{"content": "rates rose", "url": "https://example.com/news"}, created[0]["properties"])

	got, err := store.Near(context.Background(), "what did rates do")
	require.NoError(t, err)
	require.Equal(t, "rates rose", got)
	require.Contains(t, lastQuery, "Knowledge")
	require.Contains(t, lastQuery, "nearText")
	require.Contains(t, lastQuery, "what did rates do")
}

func TestWeaviateNear_EmptyAndErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"Get":{"Knowledge":[]}}}`))
	}))
	defer srv.Close()

	store, err := NewWeaviate(srv.URL, "Knowledge", srv.Client())
	require.NoError(t, err)

	got, err := store.Near(context.Background(), "anything")
	require.NoError(t, err)
	require.Equal(t, "", got)

	gqlErr := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"no module with name text2vec"}]}`))
	}))
	defer gqlErr.Close()

	store, err = NewWeaviate(gqlErr.URL, "Knowledge", gqlErr.Client())
	require.NoError(t, err)
	_, err = store.Near(context.Background(), "anything")
	require.ErrorContains(t, err, "text2vec")
}

func TestWeaviatePut_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":[{"message":"class not found"}]}`))
	}))
	defer srv.Close()

	store, err := NewWeaviate(srv.URL, "Knowledge", srv.Client())
	require.NoError(t, err)
	err = store.Put(context.Background(), []Document{{Content: "x"}})
	require.ErrorContains(t, err, "weaviate create object")
}

func TestNewWeaviate_RejectsBadInput(t *testing.T) {
	_, err := NewWeaviate("http://localhost:8080", "knowledge{}", nil)
	require.Error(t, err)
	_, err = NewWeaviate("localhost", "Knowledge", nil)
	require.Error(t, err, "url without scheme has no host")
	_, err = NewWeaviate(" ", "Knowledge", nil)
	require.Error(t, err)
}

func TestLocalNear(t *testing.T) {
	db, err := database.OpenMemory()
	require.NoError(t, err)

	store := NewLocal(db)
	got, err := store.Near(context.Background(), "interest rates")
	require.NoError(t, err)
	require.Equal(t, "", got, "empty store returns no context")

	require.NoError(t, store.Put(context.Background(), []Document{
		{Content: "Football results from the weekend", URL: "a"},
		{Content: "Central bank raises interest rates again", URL: "b"},
		{Content: "Weather: rain expected", URL: "c"},
	}))

	got, err = store.Near(context.Background(), "Why did interest rates change?")
	require.NoError(t, err)
	require.Equal(t, "Central bank raises interest rates again", got)

	got, err = store.Near(context.Background(), "quantum chromodynamics")
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()

	cfg.VectorBackend = "none"
	s, err := New(cfg, nil)
	require.NoError(t, err)
	require.Equal(t, BackendNone, s.Name())

	cfg.VectorBackend = "local"
	_, err = New(cfg, nil)
	require.Error(t, err)

	cfg.VectorBackend = "Weaviate"
	s, err = New(cfg, nil)
	require.NoError(t, err)
	require.Equal(t, BackendWeaviate, s.Name())

	cfg.VectorBackend = "pinecone"
	_, err = New(cfg, nil)
	require.Error(t, err)
}
