// Package application wires the resolved configuration into the HTTP host:
// settings handler, router middleware and server timeouts. It keeps the main
// package focused on CLI parsing and process lifecycle.
package application
