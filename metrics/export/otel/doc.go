// Package otel publishes session store metrics through an OpenTelemetry
// meter.
//
// [NewExporter] registers one Int64ObservableCounter per store counter and
// one Int64ObservableGauge per cumulative histogram bucket. A single
// callback reads the store snapshot on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate store state.
package otel
