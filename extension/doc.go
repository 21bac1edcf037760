// Package extension provides the Forge extension for mounting Hookbridge.
//
// The extension integrates Hookbridge into the Forge application framework by:
//   - Initializing the bridge with a configured store, messenger, and directory
//   - Running database migrations on registration
//   - Mounting the inbound webhook endpoint and the admin API under a
//     configurable prefix
//   - Loading persisted connections on application start
//   - Providing health checks via store.Ping
//
// Usage:
//
//	ext := extension.New(
//	    extension.WithStore(sqliteStore),
//	    extension.WithMessenger(messenger),
//	    extension.WithDirectory(directory),
//	    extension.WithPrefix("/hookbridge"),
//	)
package extension
