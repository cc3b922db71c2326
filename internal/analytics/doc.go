// Package analytics turns a flat list of normalized transactions into the
// figures shown on the dashboard and transactions pages: filtered subsets,
// totals, per-category aggregates, time series, insights, chart geometry and
// exports.
//
// Every function is pure and synchronous. Nothing is cached between calls; a
// page recomputes its whole report from the latest snapshot on each request.
package analytics
