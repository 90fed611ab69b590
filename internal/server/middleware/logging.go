// Package middleware contiene los middlewares HTTP de censusd.
package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// responseWriter envuelve http.ResponseWriter para capturar estado y tamaño.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Logging registra método, ruta, estado, duración y tamaño de cada petición.
// No registra cuerpos ni cabeceras: pueden llevar claves de API.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)

			logLevel := slog.LevelInfo
			if wrapped.statusCode >= 500 {
				logLevel = slog.LevelError
			} else if wrapped.statusCode >= 400 {
				logLevel = slog.LevelWarn
			}

			logger.Log(r.Context(), logLevel, "HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"status", wrapped.statusCode,
				"duration_ms", duration.Milliseconds(),
				"bytes_written", wrapped.written,
			)
		})
	}
}

// LoggingConOmision omite rutas de alta frecuencia (health checks).
func LoggingConOmision(logger *slog.Logger, omitir []string) func(http.Handler) http.Handler {
	omitidas := make(map[string]bool, len(omitir))
	for _, ruta := range omitir {
		omitidas[ruta] = true
	}

	registrar := Logging(logger)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if omitidas[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			registrar(next).ServeHTTP(w, r)
		})
	}
}
