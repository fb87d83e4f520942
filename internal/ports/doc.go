// Package ports defines the interfaces that connect the upload core to the
// outside world.
//
// # Port Interfaces
//
//   - [FrameSource]: produces one encoded image per capture attempt
//   - [Dialer] and [Conn]: an ordered byte stream to the collector
//   - [HTTPClient]: HTTP request abstraction for the single-shot helpers
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters (internal/adapters) implement them with TCP sockets, watched
// directories, capture commands and net/http.
package ports
