package static

import (
	"fmt"
	"math/rand/v2"
	"net/http"
)

const (
	acceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	acceptLanguage = "en-US,en;q=0.5"
	acceptEncoding = "gzip, deflate"
)

var platforms = []string{
	"Windows NT 10.0; Win64; x64",
	"Macintosh; Intel Mac OS X 10_15_7",
	"X11; Linux x86_64",
}

// RandomUserAgent returns a desktop Chrome UA with a random patch version
func RandomUserAgent() string {
	return fmt.Sprintf(
		"Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.%d Safari/537.36",
		platforms[rand.IntN(len(platforms))],
		rand.IntN(200),
	)
}

// RandomForwardedFor returns a synthetic public-looking IPv4 address
func RandomForwardedFor() string {
	return fmt.Sprintf("%d.%d.%d.%d",
		1+rand.IntN(223),
		rand.IntN(256),
		rand.IntN(256),
		1+rand.IntN(254),
	)
}

// BrowserHeaders builds a fresh browser-plausible header set. The result is
// different on every call so consecutive requests do not share a fingerprint.
func BrowserHeaders() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", RandomUserAgent())
	h.Set("Accept", acceptHTML)
	h.Set("Accept-Language", acceptLanguage)
	h.Set("Accept-Encoding", acceptEncoding)
	h.Set("X-Forwarded-For", RandomForwardedFor())
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}
