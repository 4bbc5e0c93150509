// Package preflight provides the readiness checks behind "joylaunch doctor".
//
// Checks cover the interpreter, the working directory, the dependency
// manifest, the target program and the virtual environment. They never run
// implicitly before a launch; the launcher tolerates every condition they
// report except a missing interpreter.
package preflight
