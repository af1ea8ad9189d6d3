package github

import (
	"context"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/etnz/btcfolio"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeContents emulates the contents API of a single repository branch.
type fakeContents struct {
	mu    sync.Mutex
	files map[string][]byte
	puts  []putRequest
}

func sha(content []byte) string { return fmt.Sprintf("%x", sha1.Sum(content)) }

func (f *fakeContents) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	path, ok := strings.CutPrefix(r.URL.Path, "/repos/owner/repo/contents/")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	content, exists := f.files[path]

	switch r.Method {
	case http.MethodGet:
		if r.URL.Query().Get("ref") != "main" || !exists {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"Not Found"}`))
			return
		}
		// the api wraps base64 content every 60 characters
		enc := base64.StdEncoding.EncodeToString(content)
		var wrapped strings.Builder
		for len(enc) > 60 {
			wrapped.WriteString(enc[:60] + "\n")
			enc = enc[60:]
		}
		wrapped.WriteString(enc + "\n")
		json.NewEncoder(w).Encode(contentFile{Type: "file", Encoding: "base64", Size: len(content), Path: path, SHA: sha(content), Content: wrapped.String()})

	case http.MethodPut:
		var put putRequest
		if err := json.NewDecoder(r.Body).Decode(&put); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.puts = append(f.puts, put)
		switch {
		case exists && put.SHA == "":
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"Invalid request.\n\n\"sha\" wasn't supplied."}`))
			return
		case exists && put.SHA != sha(content), !exists && put.SHA != "":
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"message":"is at 000 but expected 111"}`))
			return
		}
		data, err := base64.StdEncoding.DecodeString(put.Content)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.files[path] = data
		if exists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusCreated)
		}
		fmt.Fprintf(w, `{"content":{"sha":%q},"commit":{"sha":"c0ffee"}}`, sha(data))
	}
}

func newTestStore(t *testing.T) (*Store, *fakeContents) {
	t.Helper()
	fake := &fakeContents{files: map[string][]byte{}}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	store, err := NewStore(Config{Repo: "owner/repo", Token: "token", APIURL: server.URL}, zerolog.New(nil).Level(zerolog.Disabled))
	require.NoError(t, err)
	return store, fake
}

func TestStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore(t)

	_, _, err := store.ReadFile(ctx, "btc_data.json")
	require.ErrorIs(t, err, btcfolio.ErrNotFound)

	doc := []byte(strings.Repeat(`{"timestamp":"2025-05-23T10:00:00Z"}`, 10))
	rev1, err := store.WriteFile(ctx, "btc_data.json", doc, "")
	require.NoError(t, err)
	assert.Equal(t, sha(doc), rev1)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "Update btc_data.json", fake.puts[0].Message)
	assert.Equal(t, "main", fake.puts[0].Branch)

	content, rev, err := store.ReadFile(ctx, "btc_data.json")
	require.NoError(t, err)
	assert.Equal(t, doc, content)
	assert.Equal(t, rev1, rev)

	rev2, err := store.WriteFile(ctx, "btc_data.json", []byte("{}"), rev1)
	require.NoError(t, err)
	assert.NotEqual(t, rev1, rev2)
}

func TestStore_Conflicts(t *testing.T) {
	ctx := context.Background()
	store, fake := newTestStore(t)
	fake.files["btc_data.json"] = []byte("{}")

	_, err := store.WriteFile(ctx, "btc_data.json", []byte("[]"), "")
	assert.ErrorIs(t, err, btcfolio.ErrConflict, "creating an existing file")

	_, err = store.WriteFile(ctx, "btc_data.json", []byte("[]"), "stale")
	assert.ErrorIs(t, err, btcfolio.ErrConflict, "updating from a stale revision")

	assert.Equal(t, []byte("{}"), fake.files["btc_data.json"], "document should be untouched")
}

func TestStore_Unauthorized(t *testing.T) {
	store, _ := newTestStore(t)
	store.cfg.Token = "wrong"
	_, _, err := store.ReadFile(context.Background(), "btc_data.json")
	var httpErr *btcfolio.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)
}

func TestNewStore_InvalidConfig(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	for _, repo := range []string{"", "owner", "owner/", "/repo", "a/b/c"} {
		_, err := NewStore(Config{Repo: repo, Token: "token"}, log)
		assert.Error(t, err, "repo %q", repo)
	}
	_, err := NewStore(Config{Repo: "owner/repo"}, log)
	assert.Error(t, err, "missing token")
}

func TestRawReader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/owner/repo/main/data/btc_data.json":
			assert.Empty(t, r.Header.Get("Authorization"))
			w.Header().Set("ETag", `"abc"`)
			w.Write([]byte(`{"btc_balance":0.5}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	reader, err := NewRawReader(Config{Repo: "owner/repo", RawURL: server.URL}, zerolog.New(nil).Level(zerolog.Disabled))
	require.NoError(t, err)

	content, rev, err := reader.ReadFile(context.Background(), "data/btc_data.json")
	require.NoError(t, err)
	assert.Equal(t, `{"btc_balance":0.5}`, string(content))
	assert.Equal(t, `"abc"`, rev)

	_, _, err = reader.ReadFile(context.Background(), "missing.json")
	assert.ErrorIs(t, err, btcfolio.ErrNotFound)
}
