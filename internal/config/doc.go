// Package config loads, normalizes, and validates joylaunch configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the JOYLAUNCH_CONFIG override.
// Relative manifest, target and environment paths are anchored at the
// launcher work directory so the launcher behaves the same no matter which
// directory the binary is started from.
//
// Every key is optional: with no config file the launcher runs joy-caption.py
// from ./venv after installing ./requirements.txt.
package config
