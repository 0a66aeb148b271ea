package transport

import (
	"errors"
	"fmt"
	"net/url"
)

// URL derivation errors.
var (
	ErrInvalidOrigin = errors.New("invalid origin")
)

// DefaultPath is the fixed push-endpoint path.
const DefaultPath = "/live"

// DeriveURL derives the push-endpoint URL from a page origin.
// The scheme is wss when the origin is served over TLS, else ws; the
// host and any explicit port are preserved. An empty path selects
// DefaultPath. The derivation is pure: no network access, no defaults
// read from the environment.
func DeriveURL(origin, path string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOrigin, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host in %q", ErrInvalidOrigin, origin)
	}

	var scheme string
	switch u.Scheme {
	case "https", "wss":
		scheme = "wss"
	case "http", "ws":
		scheme = "ws"
	default:
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidOrigin, u.Scheme)
	}

	if path == "" {
		path = DefaultPath
	}

	target := url.URL{Scheme: scheme, Host: u.Host, Path: path}
	return target.String(), nil
}
