// Package mongodb opens MongoDB connections for the control-plane database
// and for per-product logical databases.
//
// Every product served by this process stores its data in its own logical
// database under a shared MongoDB deployment. Connections are opened lazily
// by the tenant registry with bounded pool sizes and a hard connect timeout,
// and verified with a ping before being handed out.
package mongodb
