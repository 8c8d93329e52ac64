package auth

import (
	"fmt"
	"net/http"
	"time"
)

// RefreshCookie builds the Set-Cookie value carrying the refresh token.
// Without persistSession the expires attribute stays empty, yielding a
// session-only cookie.
func RefreshCookie(name, token string, expiresAt time.Time, persistSession bool) string {
	expiration := ""
	if persistSession {
		expiration = expiresAt.UTC().Format(http.TimeFormat)
	}
	return fmt.Sprintf("%s=%s; expires=%s; HttpOnly", name, token, expiration)
}

// ClearRefreshCookie builds the Set-Cookie value that removes the refresh
// cookie: empty value, expiry at the epoch.
func ClearRefreshCookie(name string) string {
	return fmt.Sprintf("%s=; expires=%s; HttpOnly", name, time.Unix(0, 0).UTC().Format(http.TimeFormat))
}
