// Package localdir implements the local directory connector, the
// reference implementation of the crawl protocol.
//
// The walk is deterministic: relative paths in lexical order. Each
// invocation emits at most one batch of files and terminates with a
// checkpoint recording the last processed path, so an interrupted crawl
// resumes without duplicating or skipping files. Directory nodes are
// emitted once, on the first invocation.
//
// With permission sync, the world-readable mode bit of a file or
// directory is mirrored into IsPublic. Local filesystems carry no user
// or group identities that map onto external emails, so the email and
// group ACL sets stay empty.
package localdir
