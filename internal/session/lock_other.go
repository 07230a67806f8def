//go:build !unix

package session

// Lock is a no-op where flock is unavailable.
func (s *Store) Lock() error { return nil }

// Unlock is a no-op where flock is unavailable.
func (s *Store) Unlock() error { return nil }
