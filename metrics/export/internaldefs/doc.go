// Package internaldefs holds the metric names, help strings and bucket
// bounds shared by the exporters, so the Prometheus and OTel outputs never
// drift apart.
//
// # What this package must NOT do
//
//   - Import an exporter package.
//   - Perform I/O.
package internaldefs
