// Package session defines the session client contract and the multi-attempt
// session recovery procedure.
//
// The Client interface abstracts the remote authentication/session service:
// refresh the current session, read it, or sign out (optionally local-only,
// without invalidating the session server-side).
//
// # Recovery Procedure
//
// Recover makes up to a configured number of attempts (default 3). Each
// attempt refreshes the session and, on success, runs an ordered sequence
// of lightweight verification probes — cheap read-only calls representative
// of normal application traffic. A probe failure fails the whole attempt.
// Failed attempts are separated by a fixed inter-attempt delay.
//
// If every attempt exhausts, one last resort remains: a local-only sign-out
// followed by restoring a session snapshot from the local store. A usable
// restored session counts as recovered.
//
// The procedure never retries beyond that; surfacing terminal failure is
// the coordinator's job. Callers must not run two recoveries concurrently —
// the coordinator's exclusive-run guard enforces this.
//
// # Local Snapshot Store
//
// Store persists an encrypted session snapshot (chacha20poly1305, random
// nonce) so the last-resort path has something to restore. Snapshots carry
// refresh material and are only as trustworthy as the key management around
// them; expired snapshots are not restored.
package session
