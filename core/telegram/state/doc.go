// Package state keeps per-user dialog progress in memory.
//
// A Session is an integer stage plus the inputs collected so far. Users are
// spread over a fixed number of shards; each shard has its own mutex, so an
// update for one user never waits on users living in other shards, and two
// updates for the same user are applied one after another.
package state
