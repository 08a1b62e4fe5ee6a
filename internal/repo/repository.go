package repo

import "github.com/hamed0406/sitewatch/internal/domain"

// StateStore holds the last known up/down classification per target URL.
// The key set is fixed when the store is built and entries are never removed.
type StateStore interface {
	// Get returns the last known classification. Unknown URLs read as up.
	Get(url string) bool
	// Set records a classification. Unknown URLs are ignored.
	Set(url string, up bool)
	// Apply passes the previous classification to decide, then stores reachable.
	// Both steps run under the URL's lock, so concurrent Apply calls for the
	// same URL never interleave.
	Apply(url string, reachable bool, decide func(lastKnownUp bool))
	// Snapshot lists every entry in configuration order.
	Snapshot() []domain.SiteState
}
