package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/walletscope/pkg/logger"
)

// errCapture keeps the body of error responses so the log line can carry the message
type errCapture struct {
	chimiddleware.WrapResponseWriter
	buf        bytes.Buffer
	statusCode int
}

func (e *errCapture) WriteHeader(code int) {
	e.statusCode = code
	e.WrapResponseWriter.WriteHeader(code)
}

func (e *errCapture) Write(b []byte) (int, error) {
	if e.statusCode >= 400 && e.buf.Len() < 1024 {
		e.buf.Write(b)
	}
	return e.WrapResponseWriter.Write(b)
}

func extractErrorMessage(body []byte) string {
	var obj struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &obj) == nil {
		return obj.Error
	}
	return ""
}

// requestInfo is filled in by inner middleware and read back once the request is done
type requestInfo struct {
	mu     sync.Mutex
	wallet string
}

type requestInfoKey struct{}

// annotateWallet records the authenticated wallet on the request log line
func annotateWallet(ctx context.Context, address string) {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		info.mu.Lock()
		info.wallet = address
		info.mu.Unlock()
	}
}

func (i *requestInfo) Wallet() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.wallet
}

// Logger returns a request logging middleware. Health checks are logged at debug level.
func Logger(log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ec := &errCapture{WrapResponseWriter: ww}
			info := &requestInfo{}
			start := time.Now()

			ctx := context.WithValue(r.Context(), requestInfoKey{}, info)
			reqID := chimiddleware.GetReqID(ctx)
			if reqID != "" {
				ctx = context.WithValue(ctx, logger.RequestIDKey, reqID)
				w.Header().Set("X-Request-Id", reqID)
			}
			r = r.WithContext(ctx)

			defer func() {
				status := ww.Status()
				attrs := []any{
					"method", r.Method,
					"path", r.URL.Path,
					"status", status,
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"remote_addr", clientIP(r),
				}
				if r.URL.RawQuery != "" {
					attrs = append(attrs, "query", r.URL.RawQuery)
				}
				if reqID != "" {
					attrs = append(attrs, "request_id", reqID)
				}
				if wallet := info.Wallet(); wallet != "" {
					attrs = append(attrs, "wallet", wallet)
				}
				if status >= 400 {
					if msg := extractErrorMessage(ec.buf.Bytes()); msg != "" {
						attrs = append(attrs, "error", msg)
					}
				}

				switch {
				case status >= 500:
					log.Error("HTTP request", attrs...)
				case status >= 400:
					log.Warn("HTTP request", attrs...)
				case strings.HasPrefix(r.URL.Path, "/health"):
					log.Debug("HTTP request", attrs...)
				default:
					log.Info("HTTP request", attrs...)
				}
			}()

			next.ServeHTTP(ec, r)
		}
		return http.HandlerFunc(fn)
	}
}
