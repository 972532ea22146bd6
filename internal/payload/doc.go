// Package payload builds the normalized request sent to the assistant
// service.
//
// # Request Shape
//
// Build is a pure function from turn inputs to the wire request. The
// role context determines which optional blocks appear:
//
//   - claims: only when the role's required claim set is complete
//   - filters: pagination, only for the customer role
//   - client_hints: comparison intent detected in free text
//
// The user envelope duplicates role, session, tenant, claims, and
// filters for providers that read identity from a nested object.
//
// # Intents
//
// The intent catalogue is fixed. Course-report intents expand into full
// Spanish prompt templates keyed by course code; a handful of intents
// carry fixed messages instead.
package payload
