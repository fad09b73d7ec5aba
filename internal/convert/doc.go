// Package convert translates between the macro wire protocols and host
// positions. Every function here is pure; malformed server input is
// reported through a boolean, never through a panic.
package convert
