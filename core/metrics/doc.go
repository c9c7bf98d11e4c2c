// Package metrics owns the Prometheus registry of the service and its HTTP exposition.
//
// Features register their own collectors on the registry returned by NewRegistry;
// the start command mounts it at /metrics through the Fiber adaptor.
package metrics
