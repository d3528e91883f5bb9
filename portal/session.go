package portal

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vainnor/reflector-dashboard/config"
	"github.com/vainnor/reflector-dashboard/logging"
)

const sessionCookie = "portal_session"

// Claims carry the login state of a portal user.
type Claims struct {
	LoggedIn bool   `json:"loggedin"`
	Callsign string `json:"callsign"`
	jwt.RegisteredClaims
}

// Sessions issues and validates signed session cookies.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessions builds the cookie session store. Without a configured secret a
// random one is generated, so sessions do not survive a restart.
func NewSessions(cfg config.PortalConfig) (*Sessions, error) {
	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generating session secret: %w", err)
		}
		logging.Warn().Msg("portal.session_secret not set, using a random secret")
	}
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Sessions{secret: secret, ttl: ttl, secure: cfg.CookieSecure}, nil
}

// Issue signs a session for callsign and sets it on w.
func (s *Sessions) Issue(w http.ResponseWriter, callsign string) error {
	now := time.Now()
	claims := &Claims{
		LoggedIn: true,
		Callsign: callsign,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/portal",
		Expires:  now.Add(s.ttl),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Current returns the logged-in callsign of r, if any.
func (s *Sessions) Current(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	token, err := jwt.ParseWithClaims(c.Value, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("rejected portal session")
		return "", false
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.LoggedIn || claims.Callsign == "" {
		return "", false
	}
	return claims.Callsign, true
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/portal",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
