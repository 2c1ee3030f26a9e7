package transport

import (
	"net/http"
)

// cookieTransport carries the refresh cookie. The refresh exchange never
// sees the cookie value: the jar attaches it and stores the rotated one.
type cookieTransport struct {
	inner http.RoundTripper
	jar   http.CookieJar
}

// WrapWithCookieJar returns inner extended with jar; jar cookies are sent on
// every request and response cookies are stored back.
func WrapWithCookieJar(inner http.RoundTripper, jar http.CookieJar) http.RoundTripper {
	if jar == nil {
		return inner
	}
	if inner == nil {
		inner = http.DefaultTransport
	}
	return &cookieTransport{inner: inner, jar: jar}
}

func (c *cookieTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	outgoing := req.Clone(req.Context())
	for _, cookie := range c.jar.Cookies(outgoing.URL) {
		if _, err := outgoing.Cookie(cookie.Name); err == nil {
			continue // caller supplied cookie wins
		}
		outgoing.AddCookie(cookie)
	}
	resp, err := c.inner.RoundTrip(outgoing)
	if err != nil {
		return nil, err
	}
	if cookies := resp.Cookies(); len(cookies) > 0 {
		c.jar.SetCookies(outgoing.URL, cookies)
	}
	return resp, nil
}
