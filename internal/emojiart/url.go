package emojiart

import "net/url"

// NormalizeImageURL unwraps image search result links, which carry the real
// image location in an imgurl query parameter. Other URLs are returned as is.
func NormalizeImageURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	if raw := u.Query().Get("imgurl"); raw != "" {
		if inner, err := url.Parse(raw); err == nil && inner.IsAbs() {
			return inner
		}
	}
	out := *u
	return &out
}
