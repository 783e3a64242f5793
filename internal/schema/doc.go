// Package schema validates untyped task and account payloads before they
// reach the service layer. Every function here is pure: it either returns a
// well-typed value or a *domain.ValidationError listing every violated
// constraint, never just the first one.
//
// The same rules back the JSON create/update endpoints and each row of a CSV
// import, so a task accepted by one path is accepted by the other.
package schema
