// Package http provides HTTP handlers and middleware for the availability API.
//
// The router exposes the following endpoints:
//   - GET /availabilities?date=yyyy-MM-dd: returns {"availabilities": {...}} with
//     one key per day of the 7 day horizon starting at date, in calendar order,
//     each mapped to the bookable "H:MM" slot labels of that day. An omitted date
//     means today in the configured location. Responses carry a strong ETag and
//     honour If-None-Match with 304 Not Modified.
//   - GET /healthz: liveness probe, always {"status":"ok"}.
//   - GET /readyz: readiness probe that pings the event store.
//
// Errors are returned as {"error_code","message"} with error_code one of
// invalid_timestamp (400), invalid_event (422), source_unavailable (503),
// rate_limited (429) or internal (500).
package http
