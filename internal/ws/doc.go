// Package ws implements the WebSocket hub for cairnd.
//
// Hub manages a set of connected clients and broadcasts the current cache
// snapshot to all of them on a configurable interval (default 5s in production).
//
// New(keeper, interval) creates a Hub.
// Hub.Run(ctx) starts the broadcast ticker — blocks until ctx is cancelled,
// then closes all active connections.
// Hub.ServeHTTP upgrades an HTTP connection to WebSocket, sends the current
// snapshot immediately on connect, then streams updates on each tick.
//
// Message format sent to clients:
//
//	{
//	  "event": "snapshot",
//	  "data":  { /* same schema as GET /api/v1/snapshot */ }
//	}
//
// Clients may send {"subscribe": ["cpu", "mem"]} to narrow the stream to the
// named series; an empty list restores the full snapshot.
//
// The upgrader accepts all origins. Apply CORS restrictions at the reverse
// proxy level. WebSocket endpoint is mounted at /ws/stream by the daemon.
package ws
