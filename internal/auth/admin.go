package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrForbidden    = errors.New("admin role required")
)

type ctxKey struct{}

// Subject returns the token subject stored by the guard, if any.
func Subject(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}

// AdminGuard admits requests carrying an HS256 bearer token whose "role"
// claim equals the admin role.
type AdminGuard struct {
	secret []byte
	role   string
}

func (g *AdminGuard) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}
	if role, _ := claims["role"].(string); role != g.role {
		return "", ErrForbidden
	}
	sub, _ := claims["sub"].(string)
	return sub, nil
}

func (g *AdminGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, ErrMissingToken.Error())
			return
		}

		sub, err := g.Validate(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			status := http.StatusUnauthorized
			msg := ErrInvalidToken.Error()
			if errors.Is(err, ErrForbidden) {
				status, msg = http.StatusForbidden, ErrForbidden.Error()
			}
			logrus.WithError(err).WithFields(logrus.Fields{"path": r.URL.Path, "remote": r.RemoteAddr}).Warn("Admin request rejected")
			writeError(w, status, msg)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sub)))
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func NewAdminGuard(secret, role string) *AdminGuard {
	if role == "" {
		role = "admin"
	}
	return &AdminGuard{secret: []byte(secret), role: role}
}
