// Package ports defines the interfaces the multiplexer core depends on:
// capability contracts, the registry read side and declaration file handling.
// Infrastructure adapters implement them.
package ports
