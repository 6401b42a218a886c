package middleware

import (
	"compress/gzip"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
)

// Compress gzips responses for clients that accept it. Uploaded media served
// from /uploads/ is already compressed and passes through untouched.
type Compress struct{}

func NewCompress() *Compress {
	return &Compress{}
}

type gzipWriter struct {
	http.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipWriter) Write(b []byte) (int, error) {
	return w.gz.Write(b)
}

var gzipPool = sync.Pool{
	New: func() any {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

func (c *Compress) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") || skipCompression(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		gz := gzipPool.Get().(*gzip.Writer)
		gz.Reset(w)
		defer func() {
			gz.Close()
			gzipPool.Put(gz)
		}()

		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		// The length changes under compression.
		w.Header().Del("Content-Length")

		next.ServeHTTP(&gzipWriter{ResponseWriter: w, gz: gz}, r)
	})
}

var incompressibleExts = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {}, ".ico": {},
	".mp4": {}, ".webm": {}, ".mp3": {}, ".ogg": {},
	".zip": {}, ".gz": {}, ".br": {}, ".zst": {},
	".woff": {}, ".woff2": {},
}

// skipCompression reports whether the path serves bytes gzip cannot shrink.
func skipCompression(path string) bool {
	if strings.HasPrefix(path, "/uploads/") {
		return true
	}
	_, ok := incompressibleExts[strings.ToLower(filepath.Ext(path))]
	return ok
}
