package directory

import (
	"net/url"
	"strings"
)

const (
	// DefaultSubscribeTemplate points at feedly, {url} is replaced with the encoded feed url
	DefaultSubscribeTemplate = "https://feedly.com/i/subscription/feed%2F{url}"
	// DefaultFaviconTemplate uses Google's favicon service, {host} is replaced with the website host
	DefaultFaviconTemplate = "https://www.google.com/s2/favicons?domain={host}&sz=32"
)

// LinkOptions configures how per-entry helper links are derived
type LinkOptions struct {
	SubscribeTemplate string
	FaviconTemplate   string
}

// DefaultLinkOptions returns the templates used when nothing else is configured
func DefaultLinkOptions() LinkOptions {
	return LinkOptions{
		SubscribeTemplate: DefaultSubscribeTemplate,
		FaviconTemplate:   DefaultFaviconTemplate,
	}
}

func (o LinkOptions) withDefaults() LinkOptions {
	if o.SubscribeTemplate == "" {
		o.SubscribeTemplate = DefaultSubscribeTemplate
	}
	if o.FaviconTemplate == "" {
		o.FaviconTemplate = DefaultFaviconTemplate
	}
	return o
}

// SubscribeURL percent-encodes the feed url into the subscribe template. Templates without
// a {url} placeholder get the encoded url appended.
func SubscribeURL(template string, feedURL string) string {
	encoded := percentEncode(feedURL)
	if !strings.Contains(template, "{url}") {
		return template + encoded
	}
	return strings.ReplaceAll(template, "{url}", encoded)
}

// FaviconURL returns the favicon service url for the host of websiteURL. The second return
// value is false if no host could be extracted, callers should fall back to a placeholder then.
func FaviconURL(template string, websiteURL string) (string, bool) {
	if websiteURL == "" {
		return "", false
	}
	u, err := url.Parse(websiteURL)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	host := percentEncode(u.Hostname())
	if !strings.Contains(template, "{host}") {
		return template + host, true
	}
	return strings.ReplaceAll(template, "{host}", host), true
}

// percentEncode escapes s for use as a single url component, spaces become %20
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
