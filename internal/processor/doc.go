// Package processor wires the dictionary, the example sentence database,
// the Anki collection and the pending cards store together. It runs the
// web UI and implements the command line modes: single word, batch,
// export and archive.
package processor
