package dnd5e

import (
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is where the upstream client sends every request
const DefaultBaseURL = "https://www.dnd5eapi.co/api"

// rebaseTransport points upstream requests at a mirror of the SRD API
type rebaseTransport struct {
	from *url.URL
	to   *url.URL
	next http.RoundTripper
}

func newRebaseTransport(baseURL string, next http.RoundTripper) (*rebaseTransport, error) {
	to, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, err
	}
	from, _ := url.Parse(DefaultBaseURL)
	if next == nil {
		next = http.DefaultTransport
	}
	return &rebaseTransport{from: from, to: to, next: next}, nil
}

func (t *rebaseTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host != t.from.Host || !strings.HasPrefix(req.URL.Path, t.from.Path) {
		return t.next.RoundTrip(req)
	}
	out := req.Clone(req.Context())
	out.URL.Scheme = t.to.Scheme
	out.URL.Host = t.to.Host
	out.URL.Path = t.to.Path + strings.TrimPrefix(req.URL.Path, t.from.Path)
	out.URL.RawPath = ""
	out.Host = t.to.Host
	return t.next.RoundTrip(out)
}
