package tally

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ryhazerus/tally/store"
)

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	api := New(opts...)
	srv := httptest.NewServer(api)
	t.Cleanup(func() {
		srv.Close()
		api.Close()
	})
	return srv
}

func postCounter(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func getCounter(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decodeCount(t *testing.T, data []byte) int64 {
	t.Helper()
	var body struct {
		Count *int64 `json:"count"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	if body.Count == nil {
		t.Fatalf("no count in %q", data)
	}
	return *body.Count
}

func decodeError(t *testing.T, data []byte) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	return body.Error
}

func TestSetThenGet(t *testing.T) {
	srv := newTestServer(t)

	resp, data := postCounter(t, srv.URL+"/api/orders/processed", `{"count": 42}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST status = %d, want 200 (body %q)", resp.StatusCode, data)
	}
	if got := decodeCount(t, data); got != 42 {
		t.Errorf("POST count = %d, want 42", got)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	resp, data = getCounter(t, srv.URL+"/api/orders/processed")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d, want 200 (body %q)", resp.StatusCode, data)
	}
	if got := decodeCount(t, data); got != 42 {
		t.Errorf("GET count = %d, want 42", got)
	}
}

func TestSetOverwrites(t *testing.T) {
	srv := newTestServer(t)

	postCounter(t, srv.URL+"/api/jobs/done", `{"count": 5}`)
	postCounter(t, srv.URL+"/api/jobs/done", `{"count": 7}`)

	_, data := getCounter(t, srv.URL+"/api/jobs/done")
	if got := decodeCount(t, data); got != 7 {
		t.Errorf("count after two sets = %d, want 7", got)
	}
}

func TestGetMissingCounter(t *testing.T) {
	srv := newTestServer(t)

	resp, data := getCounter(t, srv.URL+"/api/missing-ns/missing-name")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (body %q)", resp.StatusCode, data)
	}
	if got := decodeError(t, data); got != "Counter not found" {
		t.Errorf("error = %q, want %q", got, "Counter not found")
	}
}

func TestNamespacesAreIsolated(t *testing.T) {
	srv := newTestServer(t)

	postCounter(t, srv.URL+"/api/a/x", `{"count": 1}`)
	postCounter(t, srv.URL+"/api/b/x", `{"count": 2}`)

	_, data := getCounter(t, srv.URL+"/api/a/x")
	if got := decodeCount(t, data); got != 1 {
		t.Errorf("a/x = %d, want 1", got)
	}
	_, data = getCounter(t, srv.URL+"/api/b/x")
	if got := decodeCount(t, data); got != 2 {
		t.Errorf("b/x = %d, want 2", got)
	}
}

func TestSetRejectsBadBodies(t *testing.T) {
	srv := newTestServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{"count": `},
		{"missing field", `{}`},
		{"string count", `{"count": "many"}`},
		{"float count", `{"count": 1.5}`},
		{"empty body", ``},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, data := postCounter(t, srv.URL+"/api/orders/processed", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %q)", resp.StatusCode, data)
			}
			if decodeError(t, data) == "" {
				t.Errorf("no error message in %q", data)
			}
		})
	}

	// A rejected body must never reach the store.
	resp, _ := getCounter(t, srv.URL+"/api/orders/processed")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("counter written despite rejected bodies: GET status = %d", resp.StatusCode)
	}
}

func TestZeroIsAStoredValue(t *testing.T) {
	srv := newTestServer(t)

	resp, data := postCounter(t, srv.URL+"/api/orders/returns", `{"count": 0}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST status = %d (body %q)", resp.StatusCode, data)
	}

	resp, data = getCounter(t, srv.URL+"/api/orders/returns")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d, want 200 (body %q)", resp.StatusCode, data)
	}
	if got := decodeCount(t, data); got != 0 {
		t.Errorf("count = %d, want 0", got)
	}
}

// failingStore returns a fixed error from every operation.
type failingStore struct {
	err error
}

func (f *failingStore) Set(context.Context, string, string, int64) (store.Counter, error) {
	return store.Counter{}, f.err
}

func (f *failingStore) Get(context.Context, string, string) (*store.Counter, error) {
	return nil, f.err
}

func (f *failingStore) Init(context.Context) error { return f.err }
func (f *failingStore) Close() error               { return nil }

func TestStoreFailuresMapTo500(t *testing.T) {
	stErr := &store.Error{Kind: store.KindUnavailable, Op: "set", Err: io.ErrUnexpectedEOF}
	srv := newTestServer(t, WithStore(&failingStore{err: stErr}))

	resp, data := postCounter(t, srv.URL+"/api/orders/processed", `{"count": 1}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("POST status = %d, want 500 (body %q)", resp.StatusCode, data)
	}
	if decodeError(t, data) == "" {
		t.Errorf("no error message in %q", data)
	}

	resp, data = getCounter(t, srv.URL+"/api/orders/processed")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("GET status = %d, want 500 (body %q)", resp.StatusCode, data)
	}
}

func TestUnmatchedRoutesUseRouterDefaults(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /health status = %d, want 404", resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/orders/processed", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d, want 405", resp.StatusCode)
	}
}
