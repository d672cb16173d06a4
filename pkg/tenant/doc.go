// Package tenant resolves which product an incoming request belongs to and
// manages the per-product database connections.
//
// One process serves several independent products (CRM, booking, messaging),
// each backed by its own logical MongoDB database. The Directory looks up
// product records in the control-plane database; the Registry owns a
// process-wide map of live connections, creating them lazily and exactly once
// per slug under concurrent load; the Middleware ties the two together and
// attaches the resolved product and its connection to the request context.
//
// Request handlers borrow connections from the registry but never close
// them. Only the registry's own disconnect listeners remove entries, so a
// dead connection is re-created transparently on the next request.
package tenant
