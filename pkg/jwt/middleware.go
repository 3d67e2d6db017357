package jwt

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Messages returned to clients by the middleware.
const (
	MsgTokenMissing = "Authentication token is missing!"
	MsgTokenExpired = "Trial has expired!"
	MsgTokenInvalid = "Authentication token is invalid!"
)

// Middleware requires a valid trial token in the Authorization header.
// Rejections answer 401 with {"message": ...}. Verified claims are put in
// the request context.
func Middleware(s *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := BearerToken(r)
			if err != nil {
				unauthorized(w, MsgTokenMissing)
				return
			}

			var claims TrialClaims
			if err := s.Parse(token, &claims); err != nil {
				if errors.Is(err, ErrExpiredToken) {
					unauthorized(w, MsgTokenExpired)
					return
				}
				unauthorized(w, MsgTokenInvalid)
				return
			}

			ctx := WithClaims(WithToken(r.Context(), token), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
