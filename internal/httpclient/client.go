// Package httpclient builds the transport used by the chart renderer from
// CLI configuration.
//
// It starts from github.com/hashicorp/go-cleanhttp's pooled client, which
// avoids sharing http.DefaultTransport with other code in the process, and
// adds the request timeout and optional proxy from the config.
package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// Options configures New.
type Options struct {
	// Timeout bounds the whole request including reading the body.
	// 0 means no timeout.
	Timeout time.Duration

	// ProxyURL, when set, sends every request through this proxy instead
	// of the one from the HTTP_PROXY/HTTPS_PROXY environment.
	ProxyURL string

	// UserAgent is sent with every request when set.
	UserAgent string
}

// New returns a pooled *http.Client configured by opts.
func New(opts Options) (*http.Client, error) {
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = opts.Timeout

	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		return nil, fmt.Errorf("unexpected transport type %T", client.Transport)
	}

	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", opts.ProxyURL, err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	}

	if opts.UserAgent != "" {
		client.Transport = &userAgentTransport{next: transport, userAgent: opts.UserAgent}
	}

	return client, nil
}

// userAgentTransport sets the User-Agent header on outgoing requests.
type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(clone)
}
