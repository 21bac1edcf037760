// Package hookbridge bridges inbound webhooks into chat room messages.
//
// Hookbridge is a library, not a service. Import it into your application to
// get per-room webhook connections with secret hook URLs, user-supplied
// JavaScript payload transformation, shape-based message formatting, and a
// bounded recent-webhook log for debugging.
//
// Key features:
//   - Per-room webhook connections addressed by unguessable hook IDs
//   - Sandboxed JavaScript transformation functions with hard timeouts
//   - Heuristic payload formatting with markdown rendering as the fallback
//   - JSON Schema payload guards per connection
//   - Composable store pattern with multiple backends (SQLite, Redis, Memory)
//   - Per-hook rate limiting and optional HMAC signature verification
//
// Quick start:
//
//	b, err := hookbridge.New(
//	    hookbridge.WithStore(memoryStore),
//	    hookbridge.WithMessenger(messenger),
//	    hookbridge.WithDirectory(directory),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	conn, _ := b.Provision(ctx, "!room:example.com", map[string]any{
//	    "name": "CI Alerts",
//	})
//
//	b.HandleWebhook(ctx, conn.HookID(), map[string]any{
//	    "text": "build passed",
//	})
package hookbridge
