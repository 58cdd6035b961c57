// Package logging provides file-based logging with rotation for the
// documentation server. Logs are written as JSON lines under the data
// directory so MCP stdio traffic on stdout stays clean; stderr mirroring
// is optional.
package logging
