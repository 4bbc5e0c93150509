// Package logs reads the launcher's log file for "joylaunch logs".
//
// Last returns the trailing lines of the file; Follow streams lines appended
// after a byte offset until its context is cancelled, restarting from the
// top when the file is truncated.
package logs
