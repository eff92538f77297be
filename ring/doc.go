// Package ring provides small, allocation-conscious ring buffer primitives:
// a generic index-addressable buffer, and a byte-oriented, mutex-guarded
// channel used as the backing store for each up-channel in package channel.
package ring
