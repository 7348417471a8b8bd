// Package middleware rewrites JSON HTTP responses as TOON when doing so
// saves enough bytes.
//
// Successful JSON responses are buffered in full before they are written.
// Other responses stream as soon as the handler flushes.
package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/paularlott/toon"
	"github.com/paularlott/toon/analyze"
)

const (
	HeaderCompressed      = "X-Content-Compressed"
	HeaderCompressPercent = "X-Compression-Percent"

	toonContentType = "text/plain; charset=utf-8"
)

// Config controls CompressResponse.
type Config struct {
	MinSize   int                 // Smallest body in bytes worth converting
	Threshold float64             // Minimum byte saving in percent
	Options   *toon.EncodeOptions // TOON layout (default: toon.Readable())
	Logger    *slog.Logger        // Optional, receives conversion decisions at debug level
}

// DefaultConfig returns a 1 KiB minimum size and a 50% threshold.
func DefaultConfig() Config {
	return Config{MinSize: 1024, Threshold: 50}
}

// CompressResponse returns middleware that buffers successful
// application/json responses and replaces them with their TOON encoding when
// the saving reaches cfg.Threshold. Any failure leaves the response as the
// handler wrote it.
func CompressResponse(cfg Config) func(http.Handler) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	analyzer := analyze.New()
	if cfg.Options != nil {
		analyzer.Options = cfg.Options
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newRecorder(w)
			next.ServeHTTP(rec, r)
			if rec.streaming {
				return
			}

			body := rec.body.Bytes()
			if out, pct, ok := convert(analyzer, cfg, rec, body); ok {
				cfg.Logger.Debug("compressed response", "path", r.URL.Path, "from", len(body), "to", len(out), "percent", pct)
				rec.header.Set(HeaderCompressed, "true")
				rec.header.Set(HeaderCompressPercent, strconv.FormatFloat(pct, 'f', -1, 64))
				rec.header.Set("Content-Type", toonContentType)
				rec.header.Set("Content-Length", strconv.Itoa(len(out)))
				body = out
			}

			dst := w.Header()
			for k, v := range rec.header {
				dst[k] = v
			}
			w.WriteHeader(rec.statusCode())
			_, _ = w.Write(body)
		})
	}
}

func convert(a *analyze.Analyzer, cfg Config, rec *recorder, body []byte) ([]byte, float64, bool) {
	if !rec.convertible() || len(body) < cfg.MinSize {
		return nil, 0, false
	}

	data, err := toon.FromJSON(body)
	if err != nil {
		cfg.Logger.Debug("response is not valid JSON", "error", err)
		return nil, 0, false
	}
	report, err := a.Compress(data)
	if err != nil {
		cfg.Logger.Debug("cannot measure response", "error", err)
		return nil, 0, false
	}
	if report.PercentReduced < cfg.Threshold {
		return nil, report.PercentReduced, false
	}
	return []byte(report.TOON), report.PercentReduced, true
}

// recorder buffers a handler's response so it can be rewritten. Once a
// response that cannot be converted is flushed, it writes straight through.
type recorder struct {
	w         http.ResponseWriter
	header    http.Header
	status    int
	body      bytes.Buffer
	streaming bool
}

func newRecorder(w http.ResponseWriter) *recorder {
	return &recorder{w: w, header: make(http.Header)}
}

// convertible reports whether the response is a successful JSON body.
func (r *recorder) convertible() bool {
	status := r.statusCode()
	if status < 200 || status >= 300 {
		return false
	}
	return strings.Contains(r.header.Get("Content-Type"), "application/json")
}

// Flush is a no-op while the response may still be converted.
func (r *recorder) Flush() {
	if !r.streaming {
		if r.convertible() {
			return
		}
		dst := r.w.Header()
		for k, v := range r.header {
			dst[k] = v
		}
		r.w.WriteHeader(r.statusCode())
		_, _ = r.w.Write(r.body.Bytes())
		r.body.Reset()
		r.streaming = true
	}
	if f, ok := r.w.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(status int) {
	if r.status == 0 && !r.streaming {
		r.status = status
	}
}

func (r *recorder) Write(p []byte) (int, error) {
	if r.streaming {
		return r.w.Write(p)
	}
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(p)
}

func (r *recorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}
