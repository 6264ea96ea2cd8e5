// Package app provides the application service layer.
//
// Orchestrates use cases: identity resolution, anonymous rate limiting, rewrite
// submission and deletion, serialization, account management and feed ingestion.
// Sits between HTTP handlers and domain repositories. Depends on domain interfaces,
// not concrete implementations.
//
// Use-case failures are returned as *apperrors.Error values carrying the taxonomy
// type and the client-facing message.
package app
