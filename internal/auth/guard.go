package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mayu-0506/studytime-tracker-sub000/internal"
)

// Size guard thresholds, in bytes. Oversized cookies get rejected at the
// transport layer with an opaque error, so sessions are kept small
// proactively and the critical path redirects to a recovery page instead.
const (
	MetadataFieldLimit  = 1024
	CookieSoftLimit     = 2048
	CookieShrinkLimit   = 3072
	CookieHardLimit     = 4096
	HeaderSoftLimit     = 6144
	HeaderCriticalLimit = 8192
)

// RecoveryPath is where requests with critically oversized cookie headers
// are redirected after their auth cookies are cleared.
const RecoveryPath = "/auth/recovery"

// SanitizeMetadata drops metadata values that embed inline image data or
// exceed the per-field limit. All other fields are preserved unchanged.
func SanitizeMetadata(meta map[string]string, logger internal.Logger) map[string]string {
	if len(meta) == 0 {
		return meta
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		if strings.Contains(v, "data:image/") && strings.Contains(v, ";base64,") {
			logger.Warnf("dropping metadata field %q: embedded image data (%dB)", k, len(v))
			continue
		}
		if len(v) > MetadataFieldLimit {
			logger.Warnf("dropping metadata field %q: %dB exceeds %dB limit", k, len(v), MetadataFieldLimit)
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// CookieHeaderSize sums the size of every Cookie header on the request.
func CookieHeaderSize(r *http.Request) int {
	size := 0
	for _, v := range r.Header.Values("Cookie") {
		size += len(v)
	}
	return size
}

// SizeGuardMiddleware inspects the aggregate inbound cookie size. Above the
// soft limit it logs a warning; above the critical limit it clears every
// auth cookie and redirects to the recovery page so the user can
// re-authenticate with a clean session. The recovery page and its actions
// are exempt from the redirect so they stay reachable with any header.
func SizeGuardMiddleware(logger internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		size := CookieHeaderSize(c.Request)
		if size > HeaderCriticalLimit && !strings.HasPrefix(c.Request.URL.Path, RecoveryPath) {
			logger.Errorf("cookie header %dB exceeds critical limit %dB, clearing auth cookies", size, HeaderCriticalLimit)
			ClearAuthCookies(c)
			c.Redirect(http.StatusFound, RecoveryPath)
			c.Abort()
			return
		}
		if size > HeaderSoftLimit {
			logger.Warnf("cookie header is %dB, above soft limit %dB", size, HeaderSoftLimit)
		}
		c.Next()
	}
}

// ClearAuthCookies expires every cookie carrying the auth prefix.
func ClearAuthCookies(c *gin.Context) {
	for _, cookie := range c.Request.Cookies() {
		if strings.HasPrefix(cookie.Name, AuthCookiePrefix) {
			c.SetCookie(cookie.Name, "", -1, "/", "", false, true)
		}
	}
}

// SetSessionCookie encodes and writes the session cookie, running the
// whole-cookie size checks via EncodeSession.
func SetSessionCookie(c *gin.Context, p *SessionPayload, logger internal.Logger) error {
	encoded, err := EncodeSession(p, logger)
	if err != nil {
		return err
	}
	c.SetCookie(SessionCookieName, encoded, int(30*24*3600), "/", "", false, true)
	return nil
}
