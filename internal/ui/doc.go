// Package ui provides terminal UI components for the wamctl CLI.
//
// This package uses Bubble Tea and Lipgloss to render speaker output in
// two modes:
//
//   - One-shot rendering: RenderStatus and RenderDeviceList produce a
//     styled snapshot string and return. Used by commands like
//     "wamctl status" and "wamctl scan".
//   - Live monitor: MonitorModel is an interactive Bubble Tea program
//     that subscribes to a speaker's event stream and re-renders on
//     every state change. Used by "wamctl monitor".
//
// # Logging Integration
//
// This package expects logging to be controlled via the WAM_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent,
// allowing the curated UI output to be displayed cleanly. Set
// WAM_LOG_LEVEL to "debug", "info", "warn", or "error" to enable
// logging output.
package ui
