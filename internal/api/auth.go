package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"travel-route-service/internal/platform/obs"
)

// authMiddleware validates the bearer token and puts the user id into the
// request context. Token issuance lives in a separate identity service;
// this side only verifies the shared-secret signature and reads the
// subject claim.
func authMiddleware(secret []byte, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w)
			return
		}

		raw := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			unauthorized(w)
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil {
			unauthorized(w)
			return
		}
		userID, err := strconv.ParseInt(subject, 10, 64)
		if err != nil || userID <= 0 {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), obs.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"authentication required"}`))
}
