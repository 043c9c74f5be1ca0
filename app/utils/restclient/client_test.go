package restclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRestClient(t *testing.T) {
	c := NewRestClient("http://test", map[string]string{"x": "y"})
	assert.Equal(t, "http://test", c.baseURL)
	assert.Equal(t, "y", c.headers["x"])
	require.NotNil(t, c.httpClient)
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
}

func TestDoRequestOnce(t *testing.T) {
	c := &RestClient{httpClient: &http.Client{Transport: RoundTripFunc(func(_ *http.Request) (*http.Response, error) {
		return nil, errors.New("err")
	})}}
	r, _ := http.NewRequest(http.MethodGet, "http://test", nil)
	b, s, err := c.doRequestOnce(context.Background(), r)
	assert.Error(t, err)
	assert.Zero(t, s)
	assert.Empty(t, b)
}

func TestRestClientPost(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	closed := httptest.NewServer(nil)
	closed.Close()

	cases := []struct {
		name     string
		baseURL  string
		body     any
		expectOK bool
	}{
		{"post_ok", ts.URL, map[string]string{"x": "y"}, true},
		{"invalid_url", "://bad", nil, false},
		{"json_error", ts.URL, func() {}, false},
		{"server_closed", closed.URL, nil, false},
	}
	for _, cse := range cases {
		t.Run(cse.name, func(t *testing.T) {
			b, s, err := NewRestClient(cse.baseURL, nil).Post(ctx, "/", cse.body, nil)
			if cse.expectOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, s)
				assert.Equal(t, "ok", string(b))
				return
			}
			assert.Error(t, err)
		})
	}
}

func TestPostJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"value":"hello"}`))
		case "/bad":
			w.Write([]byte(`not json`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`slow down`))
		}
	}))
	defer ts.Close()

	rc := NewRestClient(ts.URL, map[string]string{"Authorization": "Bearer k"})
	var out struct {
		Value string `json:"value"`
	}

	require.NoError(t, rc.PostJSON(context.Background(), "/ok", map[string]string{}, &out))
	assert.Equal(t, "hello", out.Value)

	assert.Error(t, rc.PostJSON(context.Background(), "/bad", map[string]string{}, &out))

	err := rc.PostJSON(context.Background(), "/limited", map[string]string{}, &out)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Status)
	assert.Equal(t, "slow down", statusErr.Body)
}

type RoundTripFunc func(*http.Request) (*http.Response, error)

func (f RoundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
