package cli

import (
	"bytes"
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/simon/auth/mock"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	server, err := mock.NewHTTPTestServer()
	require.NoError(t, err)
	defer server.Close()
	dir := t.TempDir()
	global := []string{
		"--url", server.URL,
		"--store", filepath.Join(dir, "token.json"),
		"--cookies", filepath.Join(dir, "cookies.json"),
	}
	exec := func(args ...string) (string, error) {
		out := &bytes.Buffer{}
		err := run(append(append([]string{}, global...), args...), out, &bytes.Buffer{})
		return out.String(), err
	}

	output, err := exec("login", "-e", mock.DefaultEmail, "-p", mock.DefaultPassword)
	require.NoError(t, err)
	assert.Equal(t, "logged in as "+mock.DefaultEmail+"\n", output)

	output, err = exec("me")
	require.NoError(t, err)
	assert.Contains(t, output, `"email": "`+mock.DefaultEmail+`"`)

	server.Expire()
	output, err = exec("ask", "-t", "cli-1", "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "[cli-1] "+mock.Reply("hello world")+"\n", output)
	assert.Equal(t, 1, server.Refreshes(), "each run resumes the persisted session")

	output, err = exec("history", "cli-1")
	require.NoError(t, err)
	assert.Equal(t, "user: hello world\nai: "+mock.Reply("hello world")+"\n", output)

	output, err = exec("threads")
	require.NoError(t, err)
	assert.Equal(t, "cli-1\thello world\n", output)

	_, err = exec("ask")
	assert.EqualError(t, err, "message is required")

	output, err = exec("logout")
	require.NoError(t, err)
	assert.Equal(t, "logged out\n", output)

	_, err = exec("me")
	assert.Error(t, err)
}

func TestOptions_ClientOptions(t *testing.T) {
	location := filepath.Join(t.TempDir(), "simon.yaml")
	require.NoError(t, os.WriteFile(location, []byte(`baseURL: http://file/api/
store: mem://
cookieJar: /tmp/jar.json
refreshTimeout: 5s
`), 0o600))

	options := NewOptions(&bytes.Buffer{}, &bytes.Buffer{})
	options.Config = location
	options.ClientOptions.BaseURL = "http://flag/api/"
	merged, err := options.clientOptions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://flag/api/", merged.BaseURL)
	assert.Equal(t, "mem://", merged.StoreURL)
	assert.Equal(t, "/tmp/jar.json", merged.CookieJar)
	assert.Equal(t, 5*time.Second, merged.RefreshTimeout)
	assert.Equal(t, defaultRequestTimeout, merged.RequestTimeout)
	assert.NotNil(t, merged.Logger)
}
