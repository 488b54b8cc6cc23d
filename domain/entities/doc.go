// Package entities provides the core domain types of the multiplexer:
// capabilities, capability sets, variants, modes and the declaration file form.
package entities
