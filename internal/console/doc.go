// Package console holds the terminal interactions of the launcher: the
// post-run keypress prompt and color detection for status output.
package console
