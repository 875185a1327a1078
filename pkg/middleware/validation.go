package middleware

import (
	"net/http"
	"strings"

	"edumarket/pkg/httpjson"
)

const maxBodySize = 1 << 20

// ValidateRequest rejects POST/PUT bodies that are not JSON and caps the
// request body size. Bodyless counter endpoints pass through untouched.
func ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			contentType := r.Header.Get("Content-Type")
			if r.ContentLength != 0 && contentType != "" && !strings.Contains(contentType, "application/json") {
				httpjson.Error(w, http.StatusUnsupportedMediaType, "نوع المحتوى يجب أن يكون application/json")
				return
			}
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
		next.ServeHTTP(w, r)
	})
}
