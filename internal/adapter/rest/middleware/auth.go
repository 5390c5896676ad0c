package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/ThatsDronzer/Bliss-Vendors-sub001/internal/platform/logger"
)

// ContextKey is a private key type so context values cannot collide with
// other packages.
type ContextKey string

// UserIDCtxKey holds the authenticated user id set by JWTAuth.
const UserIDCtxKey = ContextKey("user_id")

// Claims is the token payload issued by the user service.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// UserIDFromContext returns the authenticated user id, or "" when the
// request was not authenticated.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(UserIDCtxKey).(string)
	return id
}

// JWTAuth verifies the Bearer token and stores the user id in the request
// context. Requests without a valid token are rejected with 401.
func JWTAuth(jwtSecret string, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"unauthenticated","message":"authorization token is not provided"}`, http.StatusUnauthorized)
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				http.Error(w, `{"error":"unauthenticated","message":"authorization header must be 'Bearer <token>'"}`, http.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				log.Warn("token validation failed", zap.String("path", r.URL.Path), zap.Error(err))
				http.Error(w, `{"error":"unauthenticated","message":"token is invalid"}`, http.StatusUnauthorized)
				return
			}
			if claims.UserID == "" {
				http.Error(w, `{"error":"unauthenticated","message":"user_id missing from token claims"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
