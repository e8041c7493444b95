package http

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() any { return gzip.NewWriter(nil) },
}

var gzipReaderPool = sync.Pool{
	New: func() any { return new(gzip.Reader) },
}

// withGZip transparently inflates gzip-encoded request bodies and compresses
// responses for clients that accept it. It is mounted on the JSON API group
// only; the SSE and WebSocket endpoints must see the raw connection.
func withGZip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if strings.Contains(req.Header.Get("Content-Encoding"), "gzip") && req.Body != nil {
			if !inflateRequestBody(w, req) {
				return
			}
		}

		if !strings.Contains(req.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, req)
			return
		}

		gzipWriter := gzipWriterPool.Get().(*gzip.Writer)
		gzipWriter.Reset(w)

		next.ServeHTTP(&gzipResponseWriter{ResponseWriter: w, gzipWriter: gzipWriter}, req)

		gzipWriter.Close()
		gzipWriterPool.Put(gzipWriter)
	})
}

// inflateRequestBody swaps req.Body for an inflating reader backed by the
// pool. It reports false after writing the error response when the body is
// not valid gzip.
func inflateRequestBody(w http.ResponseWriter, req *http.Request) bool {
	gzipReader := gzipReaderPool.Get().(*gzip.Reader)
	if err := gzipReader.Reset(req.Body); err != nil {
		gzipReaderPool.Put(gzipReader)
		http.Error(w, "Invalid gzip data", http.StatusBadRequest)
		return false
	}

	req.Body = &wrappedReadCloser{
		Reader: gzipReader,
		OnClose: func() {
			gzipReader.Close()
			gzipReaderPool.Put(gzipReader)
		},
	}
	req.Header.Del("Content-Encoding")
	return true
}

type wrappedReadCloser struct {
	io.Reader
	OnClose func()
}

func (w *wrappedReadCloser) Close() error {
	if w.OnClose != nil {
		w.OnClose()
	}
	return nil
}

type gzipResponseWriter struct {
	http.ResponseWriter
	gzipWriter *gzip.Writer
}

func (w *gzipResponseWriter) WriteHeader(statusCode int) {
	w.Header().Set("Content-Encoding", "gzip")
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzipWriter.Write(data)
}

func (w *gzipResponseWriter) Close() error {
	return w.gzipWriter.Close()
}
