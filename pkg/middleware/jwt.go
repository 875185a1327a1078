package middleware

import (
	"context"
	"net/http"
	"strings"

	"edumarket/pkg/httpjson"
	"edumarket/pkg/jwt"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// JWTAuth requires a valid bearer token and stores its user id in the request
// context. An empty secret disables the check.
func JWTAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httpjson.Error(w, http.StatusUnauthorized, "مطلوب رمز المصادقة")
				return
			}
			userID, err := jwt.ParseUserID(secret, token)
			if err != nil {
				httpjson.Error(w, http.StatusUnauthorized, "رمز المصادقة غير صالح")
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}
