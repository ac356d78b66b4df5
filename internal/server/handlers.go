package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mandel/pkg/buildinfo"
	errs "github.com/matzehuels/mandel/pkg/errors"
	"github.com/matzehuels/mandel/pkg/fractal"
	"github.com/matzehuels/mandel/pkg/pipeline"
	"github.com/matzehuels/mandel/pkg/sink"
)

// Response headers set on renders.
const (
	headerRenderID = "X-Render-ID"
	headerCache    = "X-Cache"
)

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// regionResponse describes one preset in GET /regions.
type regionResponse struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	LowerLeft   [2]float64 `json:"lower_left"`
	UpperRight  [2]float64 `json:"upper_right"`
	Density     float64    `json:"density"`
	MaxIter     uint64     `json:"max_iter"`
	Width       int        `json:"width"`
	Height      int        `json:"height"`
}

// errorResponse is the body of every failed request.
type errorResponse struct {
	Code      errs.Code `json:"code"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	presets := fractal.Presets()
	out := make([]regionResponse, len(presets))
	for i, p := range presets {
		out[i] = regionResponse{
			Name:        p.Name,
			Description: p.Description,
			LowerLeft:   [2]float64{real(p.Region.LowerLeft), imag(p.Region.LowerLeft)},
			UpperRight:  [2]float64{real(p.Region.UpperRight), imag(p.Region.UpperRight)},
			Density:     p.Region.Density,
			MaxIter:     p.MaxIter,
			Width:       p.Region.PixelWidth(),
			Height:      p.Region.PixelHeight(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, errs.New(errs.ErrCodeNotFound, "no route for %s", r.URL.Path))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := parseRenderQuery(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Format = chi.URLParam(r, "format")
	opts.Logger = s.logger.With("request_id", requestIDFromContext(r.Context()))

	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if px := opts.Region.Pixels(); px > s.cfg.MaxPixels {
		s.writeError(w, r, errs.New(errs.ErrCodeImageTooLarge,
			"%d x %d = %d pixels exceeds the limit of %d",
			opts.Region.PixelWidth(), opts.Region.PixelHeight(), px, s.cfg.MaxPixels))
		return
	}

	key := s.runner.Keyer.ArtifactKey(opts.ArtifactKeyOpts())
	etag := strconv.Quote(key)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	// Shared by every waiter; one client leaving must not cancel the others.
	renderCtx := context.WithoutCancel(r.Context())
	v, err, shared := s.group.Do(flightKey(key, opts.Refresh), func() (any, error) {
		return s.runner.Execute(renderCtx, opts)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result := v.(*pipeline.Result)

	cacheStatus := "miss"
	if result.CacheInfo.RenderHit {
		cacheStatus = "hit"
	} else if shared {
		cacheStatus = "shared"
	}

	h := w.Header()
	h.Set("Content-Type", sink.ContentType(result.Format))
	h.Set("Content-Length", strconv.Itoa(len(result.Artifact)))
	h.Set("ETag", etag)
	h.Set(headerRenderID, result.ID.String())
	h.Set(headerCache, cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifact)
}

// flightKey keeps refresh renders from joining calls that may be served from
// the cache.
func flightKey(key string, refresh bool) string {
	if refresh {
		return key + "+refresh"
	}
	return key
}

// renderParams are the scalar query parameters of /render.
var renderParams = []string{"preset", "x1", "y1", "x2", "y2", "density", "max_iter", "refresh"}

// parseRenderQuery builds pipeline options from query parameters. A preset,
// when given, supplies the starting region and iteration cap; otherwise the
// defaults do. Individual parameters override either.
func parseRenderQuery(q url.Values) (pipeline.Options, error) {
	for _, name := range renderParams {
		if len(q[name]) > 1 {
			return pipeline.Options{}, errs.New(errs.ErrCodeInvalidInput, "parameter %s given %d times", name, len(q[name]))
		}
	}

	region := pipeline.DefaultRegion()
	maxIter := pipeline.DefaultMaxIter

	if name := q.Get("preset"); name != "" {
		p, err := fractal.LookupPreset(name)
		if err != nil {
			return pipeline.Options{}, err
		}
		region, maxIter = p.Region, p.MaxIter
	}

	x1, y1 := real(region.LowerLeft), imag(region.LowerLeft)
	x2, y2 := real(region.UpperRight), imag(region.UpperRight)
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"x1", &x1}, {"y1", &y1}, {"x2", &x2}, {"y2", &y2}, {"density", &region.Density},
	} {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return pipeline.Options{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "parameter %s", f.name)
		}
		*f.dst = v
	}

	if raw := q.Get("max_iter"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return pipeline.Options{}, errs.Wrap(errs.ErrCodeInvalidIterations, err, "parameter max_iter")
		}
		if err := fractal.ValidateIterations(v); err != nil {
			return pipeline.Options{}, err
		}
		maxIter = v
	}

	return pipeline.Options{
		Region:  fractal.NewRegion(x1, y1, x2, y2, region.Density),
		MaxIter: maxIter,
		Refresh: q.Get("refresh") == "true",
	}, nil
}

// writeError responds with the status mapped from err's code.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}

	reqID := requestIDFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", reqID)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "error", err, "request_id", reqID)
	}

	writeJSON(w, status, errorResponse{
		Code:      code,
		Message:   errs.UserMessage(err),
		RequestID: reqID,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
