// Package cache keeps parsed datasets addressed by the content of the
// uploaded file.
//
// A dataset is parsed at most once per distinct file content while it stays
// cached. Sessions take a reference with Acquire and drop it with Release;
// referenced entries are never expired by the ttl, and the size bound evicts
// unreferenced entries first.
package cache
