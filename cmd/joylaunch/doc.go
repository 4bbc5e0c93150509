// Package main hosts the joylaunch CLI entrypoint and command graph.
//
// Invoked without arguments joylaunch performs a launch: check the
// interpreter, create or reuse the virtual environment, install requirements,
// run the target and pause. Subcommands add diagnostics (doctor, status),
// run history and configuration scaffolding around that sequence.
package main
