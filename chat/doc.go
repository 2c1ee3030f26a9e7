// Package chat implements the Simon chat API on top of the authenticated
// transport: session login and logout, profile lookup, asking questions and
// browsing conversation threads.
package chat
