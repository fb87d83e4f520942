// Package domain contains the core entities and value objects for camship.
//
// It has no dependencies on infrastructure concerns (sockets, file system,
// logging) and holds only the data and rules shared by the upload core.
//
// # Entities
//
//   - [Frame]: one captured image as an opaque byte buffer
//   - [SessionConfig]: the immutable settings of one streaming upload
//   - [State]: the states of a streaming upload session
//   - [SessionError]: a fatal session failure tagged with the failing state
package domain
