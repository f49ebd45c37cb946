// Package http builds the outbound HTTP clients used by the brokerage and
// screener integrations.
package http

import (
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent by clients that do not set their own.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) industry-backend/1.0"

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
// http.DefaultClient にはタイムアウトが無いため、外部呼び出しは必ずこれを使います。
// userAgent が空でなければ全リクエストに User-Agent を付与します。
func NewHTTPClient(timeout time.Duration, userAgent string) *http.Client {
	var t http.RoundTripper = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	if userAgent != "" {
		t = &userAgentTransport{base: t, userAgent: userAgent}
	}
	return &http.Client{Timeout: timeout, Transport: t}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (u *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", u.userAgent)
	return u.base.RoundTrip(r)
}
