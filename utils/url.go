package utils

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

func ValidateURLScheme(urlStr string) error {
	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL format: %v", err)
	}

	validSchemes := []string{"http", "https"}
	if slices.Contains(validSchemes, u.Scheme) {
		return nil
	}

	return fmt.Errorf("link has invalid scheme. Must have schemes %v", validSchemes)
}

func IsURL(str string) bool {
	u, err := url.Parse(str)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// CleanHost returns the bare host name of raw, which may omit the scheme.
func CleanHost(logger zerolog.Logger, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("host is required")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	host := u.Hostname()
	logger.Debug().
		Str("host", host).
		Msg("Cleaned host")

	return host, nil
}

// JoinURL resolves an endpoint path against base and merges query into any
// query the path already carries. Absolute paths replace base entirely.
func JoinURL(base, path string, query url.Values) (string, error) {
	var u *url.URL
	if IsURL(path) {
		parsed, err := url.Parse(path)
		if err != nil {
			return "", fmt.Errorf("invalid endpoint: %w", err)
		}
		u = parsed
	} else {
		b, err := url.Parse(base)
		if err != nil {
			return "", fmt.Errorf("invalid base URL: %w", err)
		}
		if !IsURL(base) {
			return "", fmt.Errorf("base URL %q must be absolute", base)
		}

		p, err := url.Parse(strings.TrimLeft(path, "/"))
		if err != nil {
			return "", fmt.Errorf("invalid endpoint: %w", err)
		}

		u = b.JoinPath(p.Path)
		u.RawQuery = p.RawQuery
	}

	if len(query) > 0 {
		q := u.Query()
		for key, values := range query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}
