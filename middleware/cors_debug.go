package middleware

import (
	"log"
	"net/http"

	"github.com/rs/cors"
)

// CORSOptions builds the CORS policy for the API. Preflight requests are
// answered by the cors handler itself.
func CORSOptions(origins []string, debug bool) cors.Options {
	return cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Requested-With",
			"Origin",
		},
		ExposedHeaders:   []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
		Debug:            debug,
	}
}

// CORSDebugMiddleware logs the origin and method of cross-origin requests.
// It is only installed when CORS debugging is enabled.
func CORSDebugMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		log.Printf("[CORS Debug] Request from Origin: %s", origin)
		log.Printf("[CORS Debug] Request Method: %s %s", r.Method, r.URL.Path)
		if r.Method == http.MethodOptions {
			log.Printf("[CORS Debug] Preflight for %s", r.Header.Get("Access-Control-Request-Method"))
		}

		next.ServeHTTP(w, r)

		log.Printf("[CORS Debug] Allow-Origin: %q", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
