// Package service contains the application use cases. Services receive their
// stores and collaborators through constructor injection and never depend on
// a concrete infrastructure implementation.
//
// The task service persists every mutation before announcing it on the event
// publisher, so a subscriber never hears about a change that was not stored.
// The user service covers signup and signin on top of the auth package.
package service
