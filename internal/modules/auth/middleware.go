package auth

import (
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"

	"github.com/mwangikb/jikoni-backend/internal/modules/user"
)

// RequireRole returns middleware that admits requests carrying a valid
// bearer token whose role is one of the given roles.
func RequireRole(secret []byte, roles ...user.Role) func(http.Handler) http.Handler {
	allowed := make(map[user.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenString := strings.TrimPrefix(header, "Bearer ")
			if tokenString == "" || tokenString == header {
				respond(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				respond(w, http.StatusUnauthorized, map[string]string{"error": "invalid token"})
				return
			}

			if _, ok := allowed[user.Role(claims.Role)]; !ok {
				respond(w, http.StatusForbidden, map[string]string{"error": "insufficient role"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
