// Package http implements the RPC transports over HTTP.
//
// The server accepts POST /{shardId} with the serialized request as body and answers
// with the serialized response. If ServerConfig.MetricsPath is set, the same server
// exposes all metrics of the default VictoriaMetrics set on GET {MetricsPath} in
// Prometheus text format. With log level debug every request is logged.
//
// The client spreads requests round-robin over the configured endpoints. A failed
// request is retried up to ClientConfig.RetryCount times, each retry going to the next
// endpoint. Endpoints without a scheme are treated as http://.
//
// Thread Safety:
//
//	The client transport is safe for concurrent use after Connect returned.
package http
