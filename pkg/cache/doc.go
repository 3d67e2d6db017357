// Package cache provides a generic, thread-safe LRU cache with an eviction
// callback for releasing resources held by evicted values.
//
//	c := cache.NewLRUCache[string, io.Closer](128)
//	c.SetEvictCallback(func(_ string, v io.Closer) { _ = v.Close() })
package cache
