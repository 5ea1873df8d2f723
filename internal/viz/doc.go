// Package viz renders the engine in a terminal: a braille canvas for
// the stem and its leaves, plus a bubbletea model that maps keyboard
// input onto the pointer gestures the world understands.
package viz
