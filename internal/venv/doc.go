// Package venv manages the launcher's virtual environment directory.
//
// An Environment is created lazily by the base interpreter and then reused;
// nothing in this package deletes it. Activation is modelled as a pure
// transformation of a process environment block rather than a mutation of the
// current shell, so deactivation simply hands back the block captured before
// activation.
package venv
