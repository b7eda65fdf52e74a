// Package conversation holds the dialogue log of a session and the single
// "last action" slot used to resolve follow-up requests.
//
// A Store keeps the state in memory and writes the full state through a
// Persister after every mutation. Two persisters are provided:
//
//   - FileStore writes one transcript file (JSON or YAML by extension) with an
//     atomic temp-file-and-rename.
//   - SQLiteStore keeps transcripts for many sessions in one database, keyed by
//     session id.
//
// Mutations are applied in memory before they are persisted. When a write
// fails the error is returned and the in-memory state is kept.
package conversation
