// Package ingest turns an uploaded CSV document into persisted tasks.
//
// Rows are read and validated one at a time in file order. A structurally
// broken document aborts immediately. Otherwise every row is validated, and
// if any row fails the whole batch is rejected with the list of failing rows:
// an import either persists every row or none of them. Accepted rows are
// written with a single atomic bulk insert.
package ingest
