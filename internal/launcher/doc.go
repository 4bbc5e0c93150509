// Package launcher runs the setup-and-run sequence: verify a Python
// interpreter, create the virtual environment when absent, activate it,
// upgrade pip, install the requirements manifest, print the banner, run the
// target program, pause for a keypress and deactivate.
//
// Only a missing interpreter stops a launch by default. Every other step
// failure is recorded in the Result and the sequence continues; the "abort"
// failure policy instead skips straight to pause and deactivate.
package launcher
