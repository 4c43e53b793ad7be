// Package tui is the interactive terminal view of a running chain.
package tui
