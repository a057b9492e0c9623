package auth

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin     Role = "Admin"
	RoleApprover  Role = "Approver"
	RoleRequester Role = "Requester"
)

// Actor is the caller a request acts on behalf of.
type Actor struct {
	Name string
	Role Role
}

type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}

// Middleware resolves the actor of each request. With a secret it requires an HMAC-signed
// bearer token carrying sub and role; without one it trusts the X-Actor and X-Role headers,
// which is meant for single-office deployments behind a reverse proxy.
type Middleware struct {
	secret []byte
}

func New(secret string) *Middleware {
	return &Middleware{secret: []byte(secret)}
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := m.actor(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
	})
}

func (m *Middleware) actor(r *http.Request) (Actor, error) {
	if len(m.secret) == 0 {
		role := Role(r.Header.Get("X-Role"))
		if role == "" {
			role = RoleRequester
		}

		if !validRole(role) {
			return Actor{}, fmt.Errorf("unknown role %q", role)
		}

		name := strings.TrimSpace(r.Header.Get("X-Actor"))

		// Requesters are scoped by name, so an anonymous one could see everyone's records.
		if role == RoleRequester && name == "" {
			return Actor{}, fmt.Errorf("X-Actor required")
		}

		return Actor{Name: name, Role: role}, nil
	}

	header := r.Header.Get("Authorization")

	scheme, tokenStr, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || tokenStr == "" {
		return Actor{}, fmt.Errorf("bearer token required")
	}

	var claims Claims

	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return Actor{}, fmt.Errorf("invalid token: %w", err)
	}

	if claims.Subject == "" {
		return Actor{}, fmt.Errorf("token has no subject")
	}

	if !validRole(claims.Role) {
		return Actor{}, fmt.Errorf("unknown role %q", claims.Role)
	}

	return Actor{Name: claims.Subject, Role: claims.Role}, nil
}

// Require rejects requests whose actor holds none of roles.
func Require(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}

			if !slices.Contains(roles, actor.Role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Sign issues an HS256 token for subject.
func Sign(secret, subject string, role Role, ttl time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	return token.SignedString([]byte(secret))
}

func validRole(r Role) bool {
	return r == RoleAdmin || r == RoleApprover || r == RoleRequester
}
