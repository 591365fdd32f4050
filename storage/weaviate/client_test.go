package weaviate

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/docvault/core"
	"github.com/poiesic/docvault/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	docID   = "7b4e6e1c-3f0a-5c1e-9f43-0d6c9e8b1a22"
	otherID = "0f1e2d3c-4b5a-5968-8776-655443322110"
)

// fakeWeaviate is a minimal in-memory stand-in for the Weaviate REST API.
type fakeWeaviate struct {
	mu      sync.Mutex
	classes map[string]*models.Class
	objects map[string]*models.Object
	queries []string
}

func newFakeWeaviate() *fakeWeaviate {
	return &fakeWeaviate{
		classes: make(map[string]*models.Class),
		objects: make(map[string]*models.Object),
	}
}

func (f *fakeWeaviate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")
	switch {
	case path == "/v1/meta":
		w.Write([]byte(`{"hostname":"http://[::]:8080","version":"1.31.0","modules":{}}`))

	case strings.HasPrefix(path, "/v1/.well-known/"):
		w.WriteHeader(http.StatusOK)

	case r.Method == http.MethodPost && path == "/v1/schema":
		var c models.Class
		json.Unmarshal(body, &c)
		if _, ok := f.classes[c.Class]; ok {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error":[{"message":"class name Document already exists"}]}`))
			return
		}
		f.classes[c.Class] = &c
		w.Write(body)

	case r.Method == http.MethodPost && strings.HasSuffix(path, "/properties"):
		class := strings.TrimSuffix(strings.TrimPrefix(path, "/v1/schema/"), "/properties")
		c, ok := f.classes[class]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var p models.Property
		json.Unmarshal(body, &p)
		for _, existing := range c.Properties {
			if existing.Name == p.Name {
				w.WriteHeader(http.StatusUnprocessableEntity)
				w.Write([]byte(`{"error":[{"message":"property already exists"}]}`))
				return
			}
		}
		c.Properties = append(c.Properties, &p)
		w.Write(body)

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/v1/schema/"):
		c, ok := f.classes[strings.TrimPrefix(path, "/v1/schema/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(c)

	case r.Method == http.MethodPut && strings.HasPrefix(path, "/v1/objects/"):
		var o models.Object
		json.Unmarshal(body, &o)
		if _, ok := f.classes[o.Class]; !ok {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error":[{"message":"class not found"}]}`))
			return
		}
		if _, ok := f.objects[string(o.ID)]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.objects[string(o.ID)] = &o
		w.Write(body)

	case r.Method == http.MethodPost && path == "/v1/objects":
		var o models.Object
		json.Unmarshal(body, &o)
		if _, ok := f.classes[o.Class]; !ok {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"error":[{"message":"class not found"}]}`))
			return
		}
		f.objects[string(o.ID)] = &o
		w.Write(body)

	case r.Method == http.MethodGet && strings.HasPrefix(path, "/v1/objects/"):
		parts := strings.Split(strings.TrimPrefix(path, "/v1/objects/"), "/")
		o, ok := f.objects[parts[len(parts)-1]]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(o)

	case r.Method == http.MethodPost && path == "/v1/graphql":
		var q struct {
			Query string `json:"query"`
		}
		json.Unmarshal(body, &q)
		f.queries = append(f.queries, q.Query)
		if strings.Contains(q.Query, "Aggregate") {
			w.Write([]byte(`{"data":{"Aggregate":{"Document":[{"meta":{"count":` + strconv.Itoa(len(f.objects)) + `}}]}}}`))
			return
		}
		w.Write([]byte(`{"data":{"Get":{"Document":[
			{"_additional":{"id":"a","distance":0.1},"text":"alpha","checksum":"c1"},
			{"_additional":{"id":"b","distance":0.4},"text":"beta","checksum":null}
		]}}}`))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func setupClient(t *testing.T) (*Client, *fakeWeaviate) {
	t.Helper()
	fake := newFakeWeaviate()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := New(server.URL)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, fake
}

func documentCollection() *core.Collection {
	return &core.Collection{
		Class:      "Document",
		Vectorizer: core.VectorizerNone,
		Properties: core.RequiredProperties(),
	}
}

func TestNew_Options(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		opts    []Option
		wantErr bool
	}{
		{name: "nil http client", url: DefaultBaseURL, opts: []Option{WithHTTPClient(nil)}, wantErr: true},
		{name: "zero timeout", url: DefaultBaseURL, opts: []Option{WithTimeout(0)}, wantErr: true},
		{name: "missing scheme", url: "localhost:8080", wantErr: true},
		{name: "default url", url: ""},
		{name: "custom http client", url: "https://weaviate.example.com", opts: []Option{WithHTTPClient(&http.Client{})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.url, tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.url == "" {
				assert.Equal(t, DefaultBaseURL, c.baseURL)
			}
		})
	}
}

func TestSchemaLifecycle(t *testing.T) {
	ctx := context.Background()
	client, _ := setupClient(t)

	_, err := client.GetCollection(ctx, "Document")
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)

	require.NoError(t, client.CreateCollection(ctx, documentCollection()))
	err = client.CreateCollection(ctx, documentCollection())
	assert.ErrorIs(t, err, storage.ErrCollectionExists)

	got, err := client.GetCollection(ctx, "Document")
	require.NoError(t, err)
	assert.Equal(t, core.VectorizerNone, got.Vectorizer)
	assert.Equal(t, core.RequiredProperties(), got.Properties)

	require.NoError(t, client.AddProperty(ctx, "Document", core.Property{Name: "extra", DataType: "text"}))
	got, err = client.GetCollection(ctx, "Document")
	require.NoError(t, err)
	assert.True(t, got.HasProperty("extra"))

	err = client.AddProperty(ctx, "Document", core.Property{Name: "extra", DataType: "text"})
	assert.ErrorIs(t, err, storage.ErrPropertyExists)

	err = client.AddProperty(ctx, "Missing", core.Property{Name: "x", DataType: "text"})
	assert.ErrorIs(t, err, storage.ErrCollectionNotFound)

	assert.ErrorIs(t, client.CreateCollection(ctx, &core.Collection{}), core.ErrMissingClass)
}

func TestUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	client, fake := setupClient(t)
	require.NoError(t, client.CreateCollection(ctx, documentCollection()))

	obj := &core.IndexObject{
		ID:         docID,
		Class:      "Document",
		Properties: map[string]string{core.PropText: "hello", core.PropItemType: "receipts"},
		Vector:     []float32{0.5, 0.25},
	}
	require.NoError(t, client.Upsert(ctx, obj))
	assert.Len(t, fake.objects, 1)

	obj.Properties[core.PropText] = "hello again"
	require.NoError(t, client.Upsert(ctx, obj))
	assert.Len(t, fake.objects, 1)

	got, err := client.GetObject(ctx, "Document", docID)
	require.NoError(t, err)
	assert.Equal(t, obj, got)

	_, err = client.GetObject(ctx, "Document", otherID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpsert_Errors(t *testing.T) {
	client, _ := setupClient(t)

	err := client.Upsert(context.Background(), &core.IndexObject{
		ID: docID, Class: "Document", Vector: []float32{1},
	})
	assert.ErrorIs(t, err, storage.ErrUnexpectedStatus)

	err = client.Upsert(context.Background(), &core.IndexObject{ID: docID, Class: "Document"})
	assert.ErrorIs(t, err, core.ErrEmptyVector)
}

func TestFindSimilar(t *testing.T) {
	ctx := context.Background()
	client, fake := setupClient(t)

	hits, err := client.FindSimilar(ctx, "Document", []float32{1, 2}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "a", hits[0].Object.ID)
	assert.Equal(t, "alpha", hits[0].Object.Properties[core.PropText])
	assert.InDelta(t, 0.9, hits[0].Score, 1e-6)
	assert.InDelta(t, 0.1, hits[0].Distance, 1e-6)
	_, hasChecksum := hits[1].Object.Properties[core.PropChecksum]
	assert.False(t, hasChecksum)

	require.Len(t, fake.queries, 1)
	assert.Contains(t, fake.queries[0], "Document")
	assert.Contains(t, fake.queries[0], "nearVector")
	assert.Contains(t, fake.queries[0], "limit")
	assert.Contains(t, fake.queries[0], "distance")
}

func TestFindSimilar_InvalidQuery(t *testing.T) {
	client, _ := setupClient(t)
	_, err := client.FindSimilar(context.Background(), "Document", nil, 5)
	assert.ErrorIs(t, err, core.ErrEmptyVector)
	_, err = client.FindSimilar(context.Background(), "Document", []float32{1}, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestGraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/v1/meta" {
			w.Write([]byte(`{"version":"1.31.0"}`))
			return
		}
		w.Write([]byte(`{"errors":[{"message":"Cannot query field"}]}`))
	}))
	defer server.Close()

	client, err := New(server.URL)
	require.NoError(t, err)

	_, err = client.FindSimilar(context.Background(), "Document", []float32{1}, 1)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	assert.Contains(t, err.Error(), "Cannot query field")
}

func TestCountObjects(t *testing.T) {
	ctx := context.Background()
	client, _ := setupClient(t)

	count, err := client.CountObjects(ctx, "Document")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, client.CreateCollection(ctx, documentCollection()))
	for _, id := range []string{docID, otherID} {
		require.NoError(t, client.Upsert(ctx, &core.IndexObject{
			ID: id, Class: "Document", Vector: []float32{1},
		}))
	}
	count, err = client.CountObjects(ctx, "Document")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
