package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/nazmul-hq/freebusy/libs/auth"
	"github.com/nazmul-hq/freebusy/libs/httpx"
	"golang.org/x/crypto/bcrypt"
)

// AuthConfig describes the credentials admin endpoints accept: a JWT (HS256
// shared secret, or RS256 via JWKS when configured) with an owner/admin role,
// or a static machine key compared against a bcrypt hash.
type AuthConfig struct {
	JWTSecret  string
	JWKS       *auth.JWKSClient
	APIKeyHash string
}

func RequireAdmin(cfg AuthConfig, logger *slog.Logger) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				http.Error(w, "authorization required", http.StatusUnauthorized)
				return
			}

			if strings.Count(token, ".") == 2 {
				claims, err := verifyJWT(token, cfg)
				if err != nil {
					http.Error(w, "invalid token", http.StatusUnauthorized)
					return
				}
				if claims.Role != "owner" && claims.Role != "admin" {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if cfg.APIKeyHash == "" {
				http.Error(w, "authorization required", http.StatusUnauthorized)
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(cfg.APIKeyHash), []byte(token)); err != nil {
				logger.Warn("admin api key rejected")
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func verifyJWT(token string, cfg AuthConfig) (*auth.Claims, error) {
	if cfg.JWKS != nil {
		header, err := auth.ParseHeader(token)
		if err == nil && header.Alg == "RS256" && header.Kid != "" {
			key, err := cfg.JWKS.Get(header.Kid)
			if err != nil {
				return nil, err
			}
			return auth.VerifyRS256(token, key)
		}
	}
	return auth.ParseAndVerifyHS256(token, cfg.JWTSecret)
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
