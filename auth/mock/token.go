package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const userKey contextKey = "user"

// issueAccess mints an access token bound to the current generation.
func (s *Service) issueAccess(email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": email,
		"typ": "access",
		"jti": uuid.NewString(),
		"gen": s.generation.Load(),
		"iat": now.Unix(),
		"exp": now.Add(s.AccessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

func (s *Service) issueRefresh(email string) string {
	value := uuid.NewString()
	s.mu.Lock()
	s.refreshTokens[value] = &refreshToken{email: email, expiry: time.Now().Add(s.RefreshTTL)}
	s.mu.Unlock()
	return value
}

// verifyAccess returns the subject of a valid access token.
func (s *Service) verifyAccess(value string) (string, error) {
	token, err := jwt.Parse(value, func(token *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("unexpected claims")
	}
	if typ, _ := claims["typ"].(string); typ != "access" {
		return "", fmt.Errorf("unexpected token type: %v", claims["typ"])
	}
	if gen, _ := claims["gen"].(float64); int64(gen) != s.generation.Load() {
		return "", errors.New("token expired")
	}
	return claims.GetSubject()
}

func (s *Service) setRefreshCookie(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     CookiePath,
		MaxAge:   int(s.RefreshTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Service) login(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	s.mu.Lock()
	user, ok := s.users[credentials.Email]
	s.mu.Unlock()
	if !ok || user.Password != credentials.Password {
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}
	access, err := s.issueAccess(user.Email)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.setRefreshCookie(w, s.issueRefresh(user.Email))
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (s *Service) refresh(w http.ResponseWriter, r *http.Request) {
	s.refreshes.Add(1)
	if handler := s.overridden("refresh"); handler != nil {
		handler(w, r)
		return
	}
	if s.RefreshDelay > 0 {
		time.Sleep(s.RefreshDelay)
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		writeDetail(w, http.StatusUnauthorized, "Refresh cookie missing")
		return
	}
	s.mu.Lock()
	current, ok := s.refreshTokens[cookie.Value]
	valid := ok && !current.revoked && time.Now().Before(current.expiry)
	if valid {
		current.revoked = true // rotation: the presented token is single use
	}
	s.mu.Unlock()
	if !valid {
		writeDetail(w, http.StatusUnauthorized, "Token is blacklisted")
		return
	}
	access, err := s.issueAccess(current.email)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.setRefreshCookie(w, s.issueRefresh(current.email))
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

func (s *Service) logout(w http.ResponseWriter, r *http.Request) {
	s.logouts.Add(1)
	if handler := s.overridden("logout"); handler != nil {
		handler(w, r)
		return
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		s.mu.Lock()
		if current, ok := s.refreshTokens[cookie.Value]; ok {
			current.revoked = true
		}
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: CookieName, Path: CookiePath, MaxAge: -1, Expires: time.Unix(0, 0), SameSite: http.SameSiteLaxMode})
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusNoContent)
}

// authenticate rejects requests without a valid bearer access token.
func (s *Service) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		value, found := strings.CutPrefix(header, "Bearer ")
		if !found || value == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		email, err := s.verifyAccess(value)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}
		s.mu.Lock()
		user, ok := s.users[email]
		s.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

func (s *Service) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, r.Context().Value(userKey).(*User))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
