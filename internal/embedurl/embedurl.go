// Package embedurl turns pasted video links into URLs an iframe can play.
package embedurl

import (
	"net/url"
	"strings"
)

// Normalize rewrites YouTube watch and short links to their /embed/ form and
// Vimeo links to the player host. Every other input, including anything that
// does not parse as a URL, is returned unchanged.
func Normalize(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return raw
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "youtu.be":
		id := strings.Trim(u.Path, "/")
		if id == "" {
			return raw
		}
		return "https://www.youtube.com/embed/" + id
	case isYouTube(host):
		if strings.HasPrefix(u.Path, "/embed/") {
			return raw
		}
		return strings.Replace(raw, "watch?v=", "embed/", 1)
	case host == "vimeo.com" || host == "www.vimeo.com":
		id := strings.Trim(u.Path, "/")
		if id == "" {
			return raw
		}
		return u.Scheme + "://player.vimeo.com/video/" + id
	}
	return raw
}

func isYouTube(host string) bool {
	return host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}
