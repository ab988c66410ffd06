package sched

import "github.com/mohamed-moneim/cpusched/pkg/proc"

// Source yields process descriptors one at a time in non-decreasing
// arrival-time order (ties broken by ascending id). It is implemented
// by pkg/workload and kept as an interface here so the engine has no
// dependency on how a workload is produced — a file, a generator, or
// a remote service are all equally valid sources.
type Source interface {
	// Next returns the next descriptor, or ok=false once the source
	// is exhausted.
	Next() (descriptor proc.Descriptor, ok bool, err error)
}
