// Package repl compiles and evaluates scripts the way the interactive
// playground does.
//
// A Session holds the run settings. Every Run starts from a clean slate:
// the source is compiled, the bytecode listing is kept when requested and
// the program is evaluated in a fresh sandboxed state whose print and
// console functions are captured. A runtime error becomes the last
// console line and is also reported on the Result.
//
// Watch re-runs a file whenever it changes on disk, after a debounce delay.
package repl
