package auth

import "net/http"

// CookieWriter sets and clears the auth cookie. Secure is enabled in
// production only so local development works over plain HTTP.
type CookieWriter struct {
	Name   string
	Secure bool
}

// NewCookieWriter returns a writer for the default auth cookie.
func NewCookieWriter(secure bool) CookieWriter {
	return CookieWriter{Name: CookieName, Secure: secure}
}

// Set attaches token as the auth cookie with the token's lifetime.
func (c CookieWriter) Set(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(token, int(TokenTTL.Seconds())))
}

// Clear expires the auth cookie on the client.
func (c CookieWriter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c CookieWriter) cookie(value string, maxAge int) *http.Cookie {
	name := c.Name
	if name == "" {
		name = CookieName
	}
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
