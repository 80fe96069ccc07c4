package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/codetrail/codetrail-lms/internal/rbac"
)

type AuthService struct{ hmac []byte }

func NewAuthService(secret string) *AuthService { return &AuthService{hmac: []byte(secret)} }

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"` // "student" or "admin"
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  sub,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "codetrail",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(8 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// POST /auth/login  { "username": "...", "password": "..." }
// Checks the users table; the bootstrap admin account comes from config so
// a fresh install can always log in.
func LoginHandler(a *AuthService, db *sql.DB, adminUser, adminPassHash string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		sub, role, ok := authenticate(db, req.Username, req.Password, adminUser, adminPassHash)
		if !ok {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(sub, role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": tok, "role": role})
	}
}

func authenticate(db *sql.DB, username, password, adminUser, adminPassHash string) (sub, role string, ok bool) {
	if username == adminUser {
		if bcrypt.CompareHashAndPassword([]byte(adminPassHash), []byte(password)) == nil {
			return adminUser, "admin", true
		}
		return "", "", false
	}
	if db == nil {
		return "", "", false
	}
	var id, dbRole, hash string
	err := db.QueryRow(`SELECT id, role, password_hash FROM users WHERE username=$1`, username).
		Scan(&id, &dbRole, &hash)
	if err != nil {
		return "", "", false
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return "", "", false
	}
	return id, dbRole, true
}

// JWTMiddleware validates the bearer token and attaches subject and role
// to the request context.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			claims, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := WithSubject(r.Context(), claims.Sub)
			ctx = rbac.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
