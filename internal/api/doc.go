// Package api provides the HTTP REST API and WebSocket feed for the people
// collector.
//
// It is the presentation layer over person.Service: screens (mobile or web)
// create, list, view, edit and delete people through JSON endpoints, and a
// websocket relays person.created/updated/deleted events so list views can
// refresh without polling.
//
//	GET    /api/v1/health          status, version, database reachability
//	GET    /api/v1/metrics         runtime, hub, store and pool statistics
//	GET    /api/v1/map             configured map region
//	GET    /api/v1/people          {"people": [...], "count": n}
//	POST   /api/v1/people          201, or 422 with per-field errors
//	GET    /api/v1/people/{id}     200 or 404
//	PUT    /api/v1/people/{id}     200, 404 when no row was updated, or 422
//	DELETE /api/v1/people/{id}     204, also for unknown ids
//	GET    /api/v1/ws              websocket
//
// When security.auth.enabled is set, everything except health and metrics
// requires "Authorization: Bearer <jwt>".
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
