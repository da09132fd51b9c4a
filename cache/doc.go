// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache provides the in-process TTL cache behind poll reads.

# Usage

One Cache instance is shared by all handlers:

	c := cache.New(30 * time.Second)

Readers go through it:

	if v, ok := c.Get(cache.DetailKey(pollID)); ok {
		poll = v.(models.Poll)
	}

Writers invalidate the keys their mutation touches:

	c.Invalidate(cache.DetailKey(pollID), cache.ResultsKey(pollID))

# Keys

Three key families exist:

  - ListKey(ownerID): a user's poll listing, invalidated by create/update/delete
  - DetailKey(pollID): one poll with options, invalidated by update/delete/vote
  - ResultsKey(pollID): tallied results, invalidated by vote and delete

# Semantics

Entries expire after the configured TTL; expired entries are dropped lazily on
read and swept when the map grows large. A non-positive TTL disables the cache
entirely. Cached values are caller-agnostic: visibility rules are applied by
the handler after the cache fetch, never baked into the entry.
*/
package cache
