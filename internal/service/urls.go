package service

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// default ports of schemes that require a host
var specialSchemes = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
	"ftp":   "21",
}

// UTS #46 processing as browsers apply it to hosts: non transitional, lenient
// on hyphens and on characters outside letters, digits and hyphen.
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.Transitional(false),
	idna.CheckHyphens(false),
	idna.StrictDomainName(false),
	idna.BidiRule(),
	idna.CheckJoiners(true),
)

// NormalizeTargetURL validates raw as an absolute url and returns its canonical form.
func NormalizeTargetURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	i := strings.IndexByte(raw, ':')
	if i <= 0 {
		return "", ErrURLMalformed
	}
	scheme := strings.ToLower(raw[:i])

	defaultPort, special := specialSchemes[scheme]
	if special {
		raw = scheme + "://" + authorityForm(raw[i+1:])
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "", ErrURLMalformed
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if !special {
		return u.String(), nil
	}

	host, err := asciiHost(u.Hostname())
	if err != nil {
		return "", ErrURLMalformed
	}
	if port := u.Port(); port != "" && port != defaultPort {
		host += ":" + port
	}
	u.Host = host
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

// authorityForm rewrites what follows the scheme of a special url so that it
// starts with exactly "//". Any run of slashes or backslashes is accepted there
// and backslashes before the query count as path separators.
func authorityForm(rest string) string {
	end := strings.IndexAny(rest, "?#")
	if end < 0 {
		end = len(rest)
	}
	rest = strings.ReplaceAll(rest[:end], `\`, "/") + rest[end:]
	return strings.TrimLeft(rest, "/")
}

func asciiHost(host string) (string, error) {
	if host == "" {
		return "", ErrURLMalformed
	}
	// ipv6 literal
	if strings.Contains(host, ":") {
		return "[" + strings.ToLower(host) + "]", nil
	}

	ascii, err := hostProfile.ToASCII(host)
	if err != nil {
		return "", err
	}
	if ascii == "" {
		return "", ErrURLMalformed
	}
	return ascii, nil
}
