// Package subscribe provides use cases for registering and managing feed
// subscriptions, including the initial fetch and icon resolution that happen
// when a feed is added.
package subscribe

import "errors"

// Sentinel errors for subscription use case operations.
var (
	// ErrFeedNotFound indicates that the requested feed was not found.
	ErrFeedNotFound = errors.New("feed not found")

	// ErrDuplicateFeed indicates that the owner already subscribes to the
	// feed URL. The duplicate check runs before any network fetch, so a
	// rejected registration causes no traffic and no writes.
	ErrDuplicateFeed = errors.New("feed with this URL already registered")

	// ErrOwnerNotFound indicates that the registering owner does not exist.
	ErrOwnerNotFound = errors.New("owner not found")

	// ErrFolderNotFound indicates that the requested folder does not exist
	// or belongs to another owner.
	ErrFolderNotFound = errors.New("folder not found")
)
