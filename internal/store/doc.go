// Package store defines the persistence contracts used by the service layer
// and the error values every implementation maps its driver errors onto.
//
// All task operations are scoped by owner id, so a caller can never read or
// mutate another user's records through these interfaces.
package store
