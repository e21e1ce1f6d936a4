// Package cards turns a looked-up word, the definitions and example
// sentences a user picked, into flashcard records ready to be stored.
// Everything here is pure: no I/O, no shared state.
package cards
