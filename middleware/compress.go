package middleware

import (
	"log"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// gzipWrapper is built once; mux applies middleware on every request.
var gzipWrapper = newGzipWrapper()

func newGzipWrapper() func(http.Handler) http.HandlerFunc {
	wrapper, err := gzhttp.NewWrapper(gzhttp.MinSize(512))
	if err != nil {
		log.Printf("Compression disabled: %v", err)
		return nil
	}
	return wrapper
}

// CompressHandler gzips responses for clients that accept it. Bodies under
// 512 bytes are sent as-is.
func CompressHandler(next http.Handler) http.Handler {
	if gzipWrapper == nil {
		return next
	}
	return gzipWrapper(next)
}
