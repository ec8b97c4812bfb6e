package directory

import (
	"crypto/sha1" //nolint:gosec // ids only, not security relevant
	"encoding/hex"
	"fmt"
)

// UntitledFeed is used as the title for rows that don't carry one
const UntitledFeed = "Untitled Feed"

// Entry is one row of the directory, a subscribable feed
type Entry struct {
	ID         string `json:"id"`
	FeedTitle  string `json:"feed_title"`
	FeedURL    string `json:"feed_url"`
	WebsiteURL string `json:"website_url,omitempty"`
	FaviconURL string `json:"favicon_url,omitempty"`
	// SubscribeURL is the external subscription link for the feed
	SubscribeURL string `json:"subscribe_url"`
}

// entryID derives a stable id from the feed url. The positional fallback is unreachable from
// Parse, which drops rows without a feed url before an id is derived.
func entryID(feedURL string, row int) string {
	if feedURL == "" {
		return fmt.Sprintf("row-%d", row)
	}
	sum := sha1.Sum([]byte(feedURL))
	return hex.EncodeToString(sum[:])[:16]
}
