package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTargetURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "already normalized", raw: "https://example.com/", want: "https://example.com/"},
		{name: "adds root path", raw: "https://example.com", want: "https://example.com/"},
		{name: "lowercases scheme and host", raw: "HTTPS://Example.COM/Path", want: "https://example.com/Path"},
		{name: "drops default https port", raw: "https://example.com:443/a", want: "https://example.com/a"},
		{name: "drops default http port", raw: "http://example.com:80", want: "http://example.com/"},
		{name: "keeps custom port", raw: "http://example.com:8080/x", want: "http://example.com:8080/x"},
		{name: "keeps query and fragment", raw: "https://example.com/a?b=c#d", want: "https://example.com/a?b=c#d"},
		{name: "trims whitespace", raw: "  https://example.com/a \n", want: "https://example.com/a"},
		{name: "keeps userinfo", raw: "ftp://user@files.example.com", want: "ftp://user@files.example.com/"},
		{name: "non special scheme", raw: "mailto:someone@example.com", want: "mailto:someone@example.com"},
		{name: "missing slashes after scheme", raw: "http:example.com", want: "http://example.com/"},
		{name: "extra slashes after scheme", raw: "https:///example.com/x", want: "https://example.com/x"},
		{name: "backslashes as separators", raw: `https:\\example.com\a`, want: "https://example.com/a"},
		{name: "backslash in query kept", raw: `https://example.com/a?b=c\d`, want: `https://example.com/a?b=c\d`},
		{name: "idn host to punycode", raw: "https://bücher.de/", want: "https://xn--bcher-kva.de/"},
		{name: "idn host mixed case", raw: "https://BÜCHER.de/x", want: "https://xn--bcher-kva.de/x"},
		{name: "ipv6 host", raw: "http://[::1]:8080/a", want: "http://[::1]:8080/a"},
		{name: "ipv6 default port", raw: "http://[::1]:80", want: "http://[::1]/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTargetURL(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeTargetURL_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"not a url",
		"example.com/path",
		"/relative/path",
		"://missing-scheme",
		"http://",
		"http://exa mple.com/",
		"http://[::1",
	}

	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			_, err := NormalizeTargetURL(raw)
			assert.ErrorIs(t, err, ErrURLMalformed)
		})
	}
}
