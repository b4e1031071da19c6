// Package repositories implements storage for login sessions.
//
// Both stores implement [models.Repository] for [models.Session]:
//   - [SessionRepository] : SQLite persistence, schema created by the shared migrations
//   - [MemoryStore] : a mutex-guarded map, lost on restart
//
// Create assigns a new v4 UUID as the session ID. Get returns an error wrapping
// [shared.ErrSessionNotFound] for unknown IDs.
package repositories
