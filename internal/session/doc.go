// Package session keeps the client-side state of a signed-in user on top of
// a storage.Store: the bearer tokens handed over by the identity provider and
// the language and theme preferences.
package session
