package middleware

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// Staff roles issued by the Identity Service
const (
	RoleAdmin          = "ADMIN"
	RoleMedicalOfficer = "MEDICAL_OFFICER"
	RoleMCHOfficer     = "MCH_OFFICER"
	RoleDoctor         = "DOCTOR"
	RoleHelpDesk       = "HELP_DESK"
)

// StaffRoles may read the maternal dashboard
var StaffRoles = []string{RoleAdmin, RoleMedicalOfficer, RoleMCHOfficer, RoleDoctor, RoleHelpDesk}

// cacheEntry stores cached JWT claims keyed by JTI (JWT ID)
type cacheEntry struct {
	claims jwt.MapClaims
	exp    int64
}

// AuthMiddleware handles JWT validation and RBAC enforcement
// Validates tokens signed by Identity Service using mounted public key
// Uses JTI-based caching for performance optimization
type AuthMiddleware struct {
	publicKey *rsa.PublicKey
	// L1 cache: in-memory cache keyed by JTI (JWT ID) for fast lookups
	cache sync.Map
	// Background janitor for cache cleanup
	janitorStop chan bool
}

const CacheCleanupInterval = 10 * time.Minute

// NewAuthMiddleware creates a new JWT authentication middleware
// publicKey: RSA public key from Identity Service (mounted via ConfigMap)
func NewAuthMiddleware(publicKey *rsa.PublicKey) *AuthMiddleware {
	m := &AuthMiddleware{
		publicKey:   publicKey,
		janitorStop: make(chan bool),
	}

	// Start background janitor to sweep L1 cache periodically
	go m.startJanitor(CacheCleanupInterval)

	return m
}

type contextKey string

const principalKey contextKey = "principal"

var (
	ErrMissingSubject = errors.New("missing or invalid user ID claim")
	ErrMissingRole    = errors.New("missing or invalid role claim")
)

// Principal is the caller identified by a verified token
type Principal struct {
	UserID    string
	Role      string
	Email     string
	FirstName string
	LastName  string
}

// IsStaff reports whether the principal holds one of the StaffRoles
func (p Principal) IsStaff() bool {
	return slices.Contains(StaffRoles, p.Role)
}

// DisplayName joins first and last name, falling back to the user ID
func (p Principal) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.UserID
	}
	return name
}

// GetClaimsFromCacheOrParse extracts claims from cache or parses token
// Uses JTI (JWT ID) for cache keying instead of full token string
// Returns claims, JTI, and error
// Public method for use in WebSocket handlers and other contexts
func (m *AuthMiddleware) GetClaimsFromCacheOrParse(tokenString string) (jwt.MapClaims, string, error) {
	// Peek at the JTI without verifying the signature yet (performance optimization)
	parser := new(jwt.Parser)
	unverifiedToken, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, "", err
	}

	claims, ok := unverifiedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "", errors.New("invalid token claims")
	}

	// Extract JTI (JWT ID) - use it as cache key
	jti, _ := claims["jti"].(string)
	if jti == "" {
		// Fallback: if no JTI, use a hash of the token (less efficient but works)
		// In production, tokens should always have JTI
		// Use a more unique key: first 32 chars + role + userID to avoid collisions
		role, _ := claims["role"].(string)
		userID, _ := claims["sub"].(string)
		jti = fmt.Sprintf("%s-%s-%s", tokenString[:min(20, len(tokenString))], role, userID[:min(8, len(userID))])
		log.Debug().Str("role", role).Str("user_id", userID).Msg("token missing jti, using fallback cache key")
	}

	// Extract expiration for early validation
	var exp int64
	if expFloat, ok := claims["exp"].(float64); ok {
		exp = int64(expFloat)
	} else if expInt, ok := claims["exp"].(int64); ok {
		exp = expInt
	} else {
		return nil, "", errors.New("missing expiration claim")
	}

	// Immediate expiry check (fastest fail path)
	if time.Now().Unix() > exp {
		return nil, "", errors.New("token expired")
	}

	// L1 Cache Lookup (Keyed by JTI)
	if entry, ok := m.cache.Load(jti); ok {
		cached := entry.(cacheEntry)
		// Double-check expiration
		if time.Now().Unix() < cached.exp {
			return cached.claims, jti, nil
		}
		// Expired, remove from cache
		m.cache.Delete(jti)
	}

	// Full RSA Validation (Cold path - only when cache miss)
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.publicKey, nil
	})

	if err != nil {
		return nil, "", err
	}

	if !token.Valid {
		return nil, "", jwt.ErrSignatureInvalid
	}

	// Extract claims from verified token (not unverified)
	verifiedClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "", errors.New("invalid token claims")
	}

	// Store verified claims in cache for future requests
	m.cache.Store(jti, cacheEntry{claims: verifiedClaims, exp: exp})

	return verifiedClaims, jti, nil
}

// Authenticate validates a JWT and returns the principal it identifies
// Returns ErrMissingSubject or ErrMissingRole for a verified token without those claims
func (m *AuthMiddleware) Authenticate(tokenString string) (Principal, error) {
	claims, _, err := m.GetClaimsFromCacheOrParse(tokenString)
	if err != nil {
		return Principal{}, err
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return Principal{}, ErrMissingSubject
	}

	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return Principal{}, ErrMissingRole
	}

	p := Principal{UserID: userID, Role: role}
	p.Email, _ = claims["email"].(string)
	p.FirstName, _ = claims["first_name"].(string)
	p.LastName, _ = claims["last_name"].(string)
	return p, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(authHeader string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// RequireAuth is middleware that validates JWT token from Authorization header
// Adds the authenticated Principal to request context
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			log.Debug().Str("path", r.URL.Path).Msg("missing authorization header")
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}

		tokenString, ok := BearerToken(authHeader)
		if !ok {
			log.Debug().Str("path", r.URL.Path).Msg("invalid authorization header format")
			http.Error(w, "invalid authorization header", http.StatusUnauthorized)
			return
		}

		principal, err := m.Authenticate(tokenString)
		switch {
		case errors.Is(err, ErrMissingSubject):
			http.Error(w, "invalid token: missing user ID", http.StatusUnauthorized)
			return
		case errors.Is(err, ErrMissingRole):
			http.Error(w, "invalid token: missing role", http.StatusUnauthorized)
			return
		case err != nil:
			log.Warn().Err(err).Str("path", r.URL.Path).Msg("token validation failed")
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		log.Debug().
			Str("user_id", principal.UserID).
			Str("role", principal.Role).
			Dur("elapsed", time.Since(start)).
			Msg("token validated")

		ctx := WithPrincipal(r.Context(), principal)
		next(w, r.WithContext(ctx))
	}
}

// RequireAnyRole enforces role-based access control with multiple allowed roles
// Allows access if user has any of the required roles
func (m *AuthMiddleware) RequireAnyRole(allowedRoles []string, next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		role, ok := GetRole(r.Context())
		if !ok {
			log.Error().Msg("missing role in context")
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}

		if !slices.Contains(allowedRoles, role) {
			log.Warn().Strs("allowed", allowedRoles).Str("role", role).Msg("role mismatch")
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		next(w, r)
	})
}

// RequireStaff allows any of the StaffRoles
func (m *AuthMiddleware) RequireStaff(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAnyRole(StaffRoles, next)
}

// startJanitor periodically cleans up expired cache entries
func (m *AuthMiddleware) startJanitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now().Unix()
			deleted := 0
			m.cache.Range(func(key, value interface{}) bool {
				if entry, ok := value.(cacheEntry); ok && now >= entry.exp {
					m.cache.Delete(key)
					deleted++
				}
				return true
			})
			if deleted > 0 {
				log.Debug().Int("purged", deleted).Msg("token cache janitor swept expired entries")
			}
		case <-m.janitorStop:
			return
		}
	}
}

// Stop stops the background janitor (for graceful shutdown)
func (m *AuthMiddleware) Stop() {
	close(m.janitorStop)
}

// WithPrincipal stores the authenticated principal in ctx
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal extracts the authenticated principal from request context
func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (string, bool) {
	p, ok := GetPrincipal(ctx)
	return p.UserID, ok
}

// GetRole extracts role from request context
func GetRole(ctx context.Context) (string, bool) {
	p, ok := GetPrincipal(ctx)
	return p.Role, ok
}
