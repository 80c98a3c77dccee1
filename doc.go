// doc.go: package overview for cacheme

// Package cacheme is an asynchronous, tiered read-through caching library.
//
// Callers describe each cacheable fact as a Node: a typed key plus a loader
// function. Values are requested through a uniform Get / GetAll surface that
// walks an ordered list of cache tiers (an in-process W-TinyLFU admission
// cache and/or any number of remote stores), de-duplicates concurrent loads
// for the same key via a single-flight registry, back-fills tiers that
// missed, and tracks per-node-type metrics.
//
// The in-process tier is a W-TinyLFU admission policy: a small LRU window
// feeding a segmented LRU main store, admission decided by a Count-Min Sketch
// frequency estimate. Remote tiers are anything implementing Storage;
// concrete adapters (Redis, Postgres, MySQL, SQLite, MongoDB) live in
// sibling packages under storages/.
package cacheme
