package server

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/tidytree/pkg/buildinfo"
	"github.com/matzehuels/tidytree/pkg/errors"
	"github.com/matzehuels/tidytree/pkg/graph"
	"github.com/matzehuels/tidytree/pkg/literal"
	"github.com/matzehuels/tidytree/pkg/pipeline"
)

// CacheHeader reports whether the response came from the cache.
const CacheHeader = "X-Cache"

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Current()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := layoutOptions(r.URL.Query(), &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, hit, err := s.layout(r, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := graph.MarshalLayout(l)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode layout"))
		return
	}
	setCacheHeader(w, hit)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// layout decodes the request document and lays it out. Query options win
// over the document's own options, which win over the server defaults.
func (s *Server) layout(r *http.Request, opts pipeline.Options) (graph.Layout, bool, error) {
	ctx := r.Context()
	src, err := readSource(r)
	if err != nil {
		return graph.Layout{}, false, err
	}
	doc, err := s.runner.Decode(ctx, src)
	if err != nil {
		return graph.Layout{}, false, err
	}
	opts.ApplyDocument(doc.Options)
	opts.FillFrom(s.defaults)
	opts.Logger = s.requestLogger(r)
	return s.runner.LayoutWithCacheInfo(ctx, doc, src.Hash(), opts)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	var opts pipeline.Options
	if err := layoutOptions(q, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := renderOptions(q, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	l, _, err := s.layout(r, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.Class == "" {
		opts.Class = l.Class
	}
	opts.FillFrom(s.defaults)
	opts.Logger = s.requestLogger(r)
	artifacts, hit, err := s.runner.RenderWithCacheInfo(r.Context(), l, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, hit)
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(artifacts[format])
}

func (s *Server) requestLogger(r *http.Request) *log.Logger {
	return s.logger.With("request_id", RequestID(r.Context()))
}

// readSource reads the request body as a literal document.
func readSource(r *http.Request) (pipeline.Source, error) {
	format, err := inputFormat(r)
	if err != nil {
		return pipeline.Source{}, err
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return pipeline.Source{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return pipeline.Source{Name: "request body", Data: data, Format: format}, nil
}

func inputFormat(r *http.Request) (literal.Format, error) {
	if in := r.URL.Query().Get("input"); in != "" {
		return literal.ParseFormat(in)
	}
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return literal.FormatYAML, nil
	case "text/plain":
		return literal.FormatScript, nil
	}
	return literal.FormatJSON, nil
}

func layoutOptions(q url.Values, o *pipeline.Options) error {
	floats := []struct {
		key string
		dst *float64
		pin string // option pinned by an explicit 0
	}{
		{"width", &o.Width, ""},
		{"height", &o.Height, ""},
		{"margin", &o.Margin, "margin"},
		{"minSpan", &o.MinSpan, "min_span"},
		{"minDepth", &o.MinDepth, "min_depth"},
		{"distance", &o.Distance, ""},
		{"scale", &o.Scale, ""},
	}
	for _, f := range floats {
		if err := parseFloat(q, f.key, f.dst); err != nil {
			return err
		}
		if f.pin != "" && q.Has(f.key) && *f.dst == 0 {
			o.Pin(f.pin)
		}
	}
	if err := parseInt(q, "step", &o.Step); err != nil {
		return err
	}
	for key, dst := range map[string]*string{"style": &o.Style, "font": &o.Font, "class": &o.Class} {
		if v := q.Get(key); v != "" {
			*dst = v
		}
	}
	return parseBool(q, "refresh", &o.Refresh)
}

func renderOptions(q url.Values, o *pipeline.Options) error {
	if v := q.Get("background"); v != "" {
		o.Background = v
	}
	if err := parseFloat(q, "pngScale", &o.PNGScale); err != nil {
		return err
	}
	if err := parseInt(q, "cols", &o.Cols); err != nil {
		return err
	}
	if err := parseInt(q, "rows", &o.Rows); err != nil {
		return err
	}
	if err := parseBool(q, "detailed", &o.Detailed); err != nil {
		return err
	}
	return parseBool(q, "free", &o.Free)
}

func parseFloat(q url.Values, key string, dst *float64) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return errors.New(errors.ErrCodeInvalidOption, "%s must be a number, got %q", key, v)
	}
	*dst = f
	return nil
}

func parseInt(q url.Values, key string, dst *int) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.New(errors.ErrCodeInvalidOption, "%s must be an integer, got %q", key, v)
	}
	*dst = n
	return nil
}

func parseBool(q url.Values, key string, dst *bool) error {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return errors.New(errors.ErrCodeInvalidOption, "%s must be a boolean, got %q", key, v)
	}
	*dst = b
	return nil
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set(CacheHeader, "hit")
	} else {
		w.Header().Set(CacheHeader, "miss")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	if errors.IsInputError(err) {
		status = http.StatusBadRequest
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "error", err)
	} else {
		s.logger.Debug("rejected request", "id", RequestID(r.Context()), "error", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
