// Package config loads the browser preferences.
//
// Preferences are read in three steps, each overriding the one before:
//
//  1. Built-in defaults (Defaults)
//  2. The preferences file, TOML or YAML by extension
//  3. GEMVIEW_* environment variables
//
// Out-of-range values are clamped by Validate rather than rejected, so a
// bad file never prevents the browser from starting. Watch reloads the file
// when it changes on disk and notifies the registered listeners.
package config
