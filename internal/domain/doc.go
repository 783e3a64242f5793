// Package domain contains the core business entities and error values of the
// task service. It has no dependencies on storage or transport.
package domain
