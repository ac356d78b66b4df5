package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mandel/pkg/cache"
	errs "github.com/matzehuels/mandel/pkg/errors"
	"github.com/matzehuels/mandel/pkg/fractal"
	"github.com/matzehuels/mandel/pkg/pipeline"
)

// smallQuery renders the default region at 30 x 10 pixels.
const smallQuery = "x1=-1.5&y1=-0.5&x2=0&y2=0&density=20&max_iter=15"

func newTestServer(t *testing.T, c cache.Cache, cfg Config) *httptest.Server {
	t.Helper()
	cfg.Logger = log.New(io.Discard)
	runner := pipeline.NewRunner(c, nil, cfg.Logger)
	ts := httptest.NewServer(New(runner, cfg).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, url string, header http.Header) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	resp := get(t, ts.URL+"/healthz", nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("response should carry a request ID")
	}
}

func TestRegions(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	resp := get(t, ts.URL+"/regions", nil)

	var body []regionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body) != len(fractal.Presets()) {
		t.Fatalf("got %d regions, want %d", len(body), len(fractal.Presets()))
	}
	for _, r := range body {
		if r.Name == fractal.DefaultPreset {
			if r.Width != 4500 || r.Height != 1500 || r.MaxIter != 15 {
				t.Errorf("classic = %+v", r)
			}
			return
		}
	}
	t.Errorf("regions should include %q", fractal.DefaultPreset)
}

func TestRender(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	resp := get(t, ts.URL+"/render.png?"+smallQuery, nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200: %+v", resp.StatusCode, decodeError(t, resp))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	if resp.Header.Get("ETag") == "" || resp.Header.Get(headerRenderID) == "" {
		t.Error("ETag and render ID headers should be set")
	}
	if got := resp.Header.Get(headerCache); got != "miss" {
		t.Errorf("X-Cache = %q, want miss", got)
	}

	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("body is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 30 || b.Dy() != 10 {
		t.Errorf("image = %d x %d, want 30 x 10", b.Dx(), b.Dy())
	}
}

func TestRenderFormats(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	for format, ct := range map[string]string{"tiff": "image/tiff", "bmp": "image/bmp"} {
		resp := get(t, ts.URL+"/render."+format+"?"+smallQuery, nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", format, resp.StatusCode)
			continue
		}
		if got := resp.Header.Get("Content-Type"); got != ct {
			t.Errorf("%s: Content-Type = %q, want %q", format, got, ct)
		}
	}
}

func TestRenderCacheAndETag(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, c, Config{})
	url := ts.URL + "/render.png?" + smallQuery

	first := get(t, url, nil)
	firstBody, _ := io.ReadAll(first.Body)
	etag := first.Header.Get("ETag")

	second := get(t, url, nil)
	secondBody, _ := io.ReadAll(second.Body)
	if got := second.Header.Get(headerCache); got != "hit" {
		t.Errorf("X-Cache = %q, want hit", got)
	}
	if !bytes.Equal(firstBody, secondBody) {
		t.Error("cached body differs from the first render")
	}
	if second.Header.Get("ETag") != etag {
		t.Error("ETag should be stable for identical requests")
	}

	conditional := get(t, url, http.Header{"If-None-Match": {etag}})
	if conditional.StatusCode != http.StatusNotModified {
		t.Errorf("conditional status = %d, want 304", conditional.StatusCode)
	}

	refreshed := get(t, url+"&refresh=true", nil)
	if got := refreshed.Header.Get(headerCache); got != "miss" {
		t.Errorf("refresh X-Cache = %q, want miss", got)
	}
}

func TestFlightKey(t *testing.T) {
	if flightKey("abc", false) != "abc" {
		t.Error("plain renders should share the artifact key")
	}
	if flightKey("abc", true) == flightKey("abc", false) {
		t.Error("refresh renders must not join a plain render")
	}
}

func TestRenderPreset(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	resp := get(t, ts.URL+"/render.png?preset=seahorse-valley&density=100&max_iter=20", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	// (-0.7 - -0.8) * 100 = 10 and (0.15 - 0.05) * 100 = 10, up to rounding.
	if b := img.Bounds(); b.Dx() < 9 || b.Dx() > 10 || b.Dy() < 9 || b.Dy() > 10 {
		t.Errorf("image = %d x %d, want about 10 x 10", b.Dx(), b.Dy())
	}
}

func TestRenderErrors(t *testing.T) {
	ts := newTestServer(t, nil, Config{MaxPixels: 1000})

	tests := []struct {
		name   string
		path   string
		status int
		code   errs.Code
	}{
		{"bad format", "/render.gif?" + smallQuery, http.StatusBadRequest, errs.ErrCodeInvalidFormat},
		{"unparsable density", "/render.png?density=lots", http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"zero density", "/render.png?density=0", http.StatusBadRequest, errs.ErrCodeInvalidDensity},
		{"zero iterations", "/render.png?x1=-1.5&y1=-0.5&x2=0&y2=0&density=20&max_iter=0", http.StatusBadRequest, errs.ErrCodeInvalidIterations},
		{"repeated parameter", "/render.png?" + smallQuery + "&max_iter=0", http.StatusBadRequest, errs.ErrCodeInvalidInput},
		{"inverted", "/render.png?x1=1&x2=-1&density=10", http.StatusBadRequest, errs.ErrCodeInvalidRegion},
		{"empty", "/render.png?x1=0&x2=0&density=10", http.StatusBadRequest, errs.ErrCodeInvalidRegion},
		{"too large", "/render.png", http.StatusRequestEntityTooLarge, errs.ErrCodeImageTooLarge},
		{"unknown preset", "/render.png?preset=atlantis", http.StatusNotFound, errs.ErrCodePresetNotFound},
		{"unknown route", "/nope", http.StatusNotFound, errs.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts.URL+tt.path, nil)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			body := decodeError(t, resp)
			if body.Code != tt.code {
				t.Errorf("code = %s, want %s", body.Code, tt.code)
			}
			if body.RequestID == "" {
				t.Error("error body should carry the request ID")
			}
		})
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	resp := get(t, ts.URL+"/healthz", http.Header{RequestIDHeader: {"trace-123"}})
	if got := resp.Header.Get(RequestIDHeader); got != "trace-123" {
		t.Errorf("X-Request-ID = %q, want trace-123", got)
	}
}

func TestConcurrentIdenticalRenders(t *testing.T) {
	ts := newTestServer(t, nil, Config{})
	url := ts.URL + "/render.png?" + smallQuery

	const n = 8
	bodies := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := http.Get(url)
			if err != nil {
				t.Error(err)
				return
			}
			defer resp.Body.Close()
			bodies[i], _ = io.ReadAll(resp.Body)
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if !bytes.Equal(bodies[0], bodies[i]) {
			t.Fatalf("response %d differs from response 0", i)
		}
	}
}

func TestParseRenderQueryRepeated(t *testing.T) {
	q := url.Values{"max_iter": {"15", "0"}}
	if _, err := parseRenderQuery(q); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("parseRenderQuery(%v) error = %v, want INVALID_INPUT", q, err)
	}
}

func TestParseRenderQueryDefaults(t *testing.T) {
	opts, err := parseRenderQuery(nil)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Region != pipeline.DefaultRegion() || opts.MaxIter != pipeline.DefaultMaxIter {
		t.Errorf("parseRenderQuery(nil) = %v / %d, want defaults", opts.Region, opts.MaxIter)
	}
}
