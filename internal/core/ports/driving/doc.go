// Package driving provides interfaces for entry-point adapters (primary/inbound ports).
package driving
