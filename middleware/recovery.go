package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"redbus_site/utils"
)

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				log.Printf("Panic recovered on %s %s: %v\nStack trace:\n%s", r.Method, r.URL.Path, err, debug.Stack())
				utils.WriteError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
