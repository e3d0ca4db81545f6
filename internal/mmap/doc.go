// Package mmap maps memory from the operating system.
//
// Arenas take their backing store from Anonymous so large filter workspaces
// stay off the garbage-collected heap. LocalStore reads trace files through
// Open with Sequential advice.
//
// On platforms without mmap(2) both fall back to heap slices.
package mmap
