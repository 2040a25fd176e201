// Package compile wires the Flattener, liveness analysis, spill selection/promotion, register
// allocation, and the Emitter into one per-class pipeline. Options is threaded through every
// stage instead of read from package globals.
package compile

// Options configures one compilation run. Threads bounds how many Subroutines may be flattened
// and register-allocated concurrently (each Subroutine compiles independently; nothing about a
// single Subroutine's own pipeline is concurrent internally); emission runs afterward, once, on
// the calling goroutine. Registers overrides the register
// allocator's K for experimentation; the zero value means "use regalloc.K".
type Options struct {
	Out       string
	Registers int
	Threads   int
	Verbose   bool
}

// DefaultOptions returns the Options cmd/jackc starts from before applying flags.
func DefaultOptions() Options {
	return Options{Out: "", Registers: 0, Threads: 1, Verbose: false}
}
