// Package domain defines the core entities of headlinepulse and the contracts
// between them.
//
// Files are concept-oriented (user.go, headline.go, rewrite.go, scoring.go, ...).
// No implementation code, just types and interfaces consumed by the app layer
// and implemented by adapters.
package domain
