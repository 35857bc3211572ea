package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GriffinCanCode/modloader/internal/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestMapProvider(t *testing.T) {
	ctx := context.Background()
	p := NewMapProvider(map[string]string{"a.js": "exports.a = 1"})

	require.NoError(t, p.Add("b.js", "exports.b = 2"))

	text, err := p.Source(ctx, "b.js")
	require.NoError(t, err)
	assert.Equal(t, "exports.b = 2", text)
	assert.Equal(t, []string{"a.js", "b.js"}, p.List())

	_, err = p.Source(ctx, "c.js")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMapProviderAddErrors(t *testing.T) {
	p := &MapProvider{}

	assert.Error(t, p.Add("", "x"), "expected error for missing name")
	require.NoError(t, p.Add("a.js", "x"))
	assert.Error(t, p.Add("a.js", "y"), "expected error for duplicate module")
}

type failingProvider struct{ err error }

func (f failingProvider) Source(context.Context, string) (string, error) {
	return "", f.err
}

func TestChain(t *testing.T) {
	ctx := context.Background()
	first := NewMapProvider(map[string]string{"a.js": "first"})
	second := NewMapProvider(map[string]string{"a.js": "second", "b.js": "b"})
	chain := Chain{first, second}

	text, err := chain.Source(ctx, "a.js")
	require.NoError(t, err)
	assert.Equal(t, "first", text)

	text, err = chain.Source(ctx, "b.js")
	require.NoError(t, err)
	assert.Equal(t, "b", text)

	_, err = chain.Source(ctx, "c.js")
	assert.ErrorIs(t, err, ErrNotFound)

	boom := errors.New("boom")
	_, err = Chain{failingProvider{boom}, second}.Source(ctx, "b.js")
	assert.ErrorIs(t, err, boom, "non not-found errors stop the chain")
}

func TestErrNotFoundMatchesSandboxKind(t *testing.T) {
	err := fmt.Errorf("module a.js: %w", ErrNotFound)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, sandbox.ErrNotFound)
	assert.NotErrorIs(t, err, sandbox.ErrProvider)
	assert.NotErrorIs(t, errors.New("upstream 500"), sandbox.ErrNotFound)
}

func TestDirProvider(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeFile(t, root, "main.js", "require('lib/util.js')")
	writeFile(t, root, "lib/util.js", "exports.util = true")
	writeFile(t, root, "lib/notes.txt", "not a module")
	writeFile(t, root, "lib/blob.js", "\x00\x01\x02\xff\xfe")

	p, err := NewDirProvider(root)
	require.NoError(t, err)
	assert.Equal(t, root, p.Root())

	ids, err := p.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"lib/blob.js", "lib/util.js", "main.js"}, ids)

	text, err := p.Source(ctx, "lib/util.js")
	require.NoError(t, err)
	assert.Equal(t, "exports.util = true", text)

	_, err = p.Source(ctx, "lib/blob.js")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "not a text file")

	tests := []string{"lib/notes.txt", "missing.js", "../escape.js"}
	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			_, err := p.Source(ctx, id)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestDirProviderInvalidPattern(t *testing.T) {
	_, err := NewDirProvider(t.TempDir(), "[")
	assert.Error(t, err)
}

func TestURLProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/remote.js":
			_, _ = w.Write([]byte("exports.remote = true"))
		case "/broken.js":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	p := NewURLProvider(map[string]string{
		"remote.js": server.URL + "/remote.js",
		"gone.js":   server.URL + "/gone.js",
		"broken.js": server.URL + "/broken.js",
	}, RetryConfig{MaxRetries: 1, MinWait: time.Millisecond, MaxWait: 2 * time.Millisecond, RequestsPerSecond: 100})
	ctx := context.Background()

	text, err := p.Source(ctx, "remote.js")
	require.NoError(t, err)
	assert.Equal(t, "exports.remote = true", text)

	_, err = p.Source(ctx, "gone.js")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.Source(ctx, "unmapped.js")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.Source(ctx, "broken.js")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestParseRequire(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single", `require('foo')`, []string{"foo"}},
		{"multiple", `require('foo') require("baz")`, []string{"foo", "baz"}},
		{"with source", `require('b.js', 'exports.b = 1')`, []string{"b.js"}},
		{"spaces", `require( "a/b.js" )`, []string{"a/b.js"}},
		{"computed", `require(name)`, []string{}},
		{"other call", `myrequire('x')`, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRequire(tt.text))
		})
	}
}
