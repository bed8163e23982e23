package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/louisbranch/nois/internal/platform/id"
	"github.com/louisbranch/nois/internal/platform/requestctx"
)

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLength bounds client-supplied identifiers echoed back.
const maxRequestIDLength = 64

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withRequestLog tags each request with an identifier, reusing a client
// supplied one, and logs its outcome.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			generated, err := id.NewID()
			if err != nil {
				s.logger.Warn("generate request id", zap.Error(err))
			}
			requestID = generated
		}
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(requestctx.WithRequestID(r.Context(), requestID))

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request served",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
