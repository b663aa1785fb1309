// vm.go - mapping request types and the Options builder
//
// (c) 2024- Sudhi Herle <sudhi@herle.net>
//
// Licensing Terms: GPLv2
//
// If you need a commercial license for this work, please contact
// the author.
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

// Package vm is the system facade: a thin, uniform surface over the host's
// virtual memory calls (map, unmap, protect, flush, advise, lock, and the
// double-mapped ring-pair allocator), plus the Options builder that collects
// a caller's intent before it is dispatched to that facade.
//
// vm never keeps a file descriptor or handle beyond the duration of a single
// call — every method that needs one takes it as an argument.
package vm

import (
	"os"

	"github.com/opencoff/vmem/errs"
	"github.com/opencoff/vmem/page"
)

// Prot is the protection requested for a mapping.
type Prot int

const (
	// Read grants read access.
	Read Prot = 1 << iota
	// Write grants write access.
	Write
	// Exec grants execute access.
	Exec
	// Copy requests a private copy-on-write mapping: writes are visible
	// only to this mapping and never reach the backing file.
	Copy
)

func (p Prot) String() string {
	s := ""
	if p&Read != 0 {
		s += "r"
	}
	if p&Write != 0 {
		s += "w"
	}
	if p&Exec != 0 {
		s += "x"
	}
	if p&Copy != 0 {
		s += "c"
	}
	if s == "" {
		return "-"
	}
	return s
}

// Visibility controls whether writes propagate to the backing file and
// other mappers (Shared), or stay local to this mapping (Private).
type Visibility int

const (
	Shared Visibility = iota
	Private
)

// Flush selects how MapMut.Flush waits for dirty pages to reach disk.
type Flush int

const (
	// Sync blocks until dirty pages are durably written.
	Sync Flush = iota
	// Async queues the write-back and returns immediately.
	Async
)

// Advice is a portable access-pattern hint, mapped to the closest per-OS
// primitive. An OS that lacks a given hint succeeds without effect.
type Advice int

const (
	Normal Advice = iota
	Random
	Sequential
	WillNeed
	DontNeed
)

// Request is the fully-resolved, validated description of a single mapping,
// produced by Options and consumed by the facade's Map function.
type Request struct {
	Offset     int64
	Len        int64
	Prot       Prot
	Visibility Visibility
	Resize     bool
	Populate   bool
	Lock       bool
	Truncate   bool
}

// Options accumulates the caller's desired offset, length, protection,
// visibility and side-effect flags before validation and dispatch. The zero
// value maps the whole file read-only from offset 0.
type Options struct {
	req Request
}

// NewOptions returns a builder defaulting to a whole-file, read-only, shared
// mapping.
func NewOptions() *Options {
	return &Options{req: Request{Prot: Read, Visibility: Shared}}
}

// Offset sets the starting byte within the file. Default 0.
func (o *Options) Offset(n int64) *Options { o.req.Offset = n; return o }

// Len sets the number of bytes to map. Default: remainder of the file from
// Offset.
func (o *Options) Len(n int64) *Options { o.req.Len = n; return o }

// Read requests read access.
func (o *Options) Read() *Options { o.req.Prot |= Read; return o }

// Write requests write access.
func (o *Options) Write() *Options { o.req.Prot |= Write; return o }

// Exec requests execute access.
func (o *Options) Exec() *Options { o.req.Prot |= Exec; return o }

// Copy requests a private copy-on-write mapping; it implies Private
// visibility regardless of whether Share was also called.
func (o *Options) Copy() *Options {
	o.req.Prot |= Copy
	o.req.Visibility = Private
	return o
}

// Share requests shared visibility (the default).
func (o *Options) Share() *Options {
	if o.req.Prot&Copy == 0 {
		o.req.Visibility = Shared
	}
	return o
}

// Resize extends the backing file to cover the requested range if it is
// currently shorter.
func (o *Options) Resize() *Options { o.req.Resize = true; return o }

// Populate prefaults pages at map time (MAP_POPULATE or the closest
// equivalent).
func (o *Options) Populate() *Options { o.req.Populate = true; return o }

// Lock pins the mapped pages in RAM once mapped.
func (o *Options) Lock() *Options { o.req.Lock = true; return o }

// Truncate truncates the backing file to Offset+Len before mapping.
func (o *Options) Truncate() *Options { o.req.Truncate = true; return o }

// Request returns a copy of the options accumulated so far, before
// defaulting/validation. Package mapping uses this to decide how to open
// the backing file (e.g. O_RDWR vs O_RDONLY) ahead of calling Map, which
// performs the real validation against the opened file's size.
func (o *Options) Request() Request {
	return o.req
}

// validate resolves defaults and rejects malformed combinations. fileLen is
// the backing file's current size, or -1 for an anonymous mapping. It does
// not itself check whether the file was opened for writing — that refusal
// comes from the OS at map time and is translated to PermissionDenied by
// the per-OS mapOS implementation, the same way the OS is the source of
// truth for every other protection check.
func (o *Options) validate(fileLen int64) (Request, error) {
	req := o.req

	if req.Prot&Write != 0 && req.Prot&Copy == 0 {
		req.Visibility = Shared
	}
	if req.Prot&Copy != 0 {
		req.Visibility = Private
	}

	if req.Offset < 0 {
		return req, errs.New(errs.InvalidInput, "validate")
	}
	if int64(page.AllocationGranularity()) > 0 && req.Offset%int64(page.AllocationGranularity()) != 0 {
		return req, errs.New(errs.InvalidInput, "validate")
	}

	if fileLen >= 0 {
		if req.Len == 0 {
			req.Len = fileLen - req.Offset
		}
		if req.Len <= 0 {
			return req, errs.New(errs.InvalidInput, "validate")
		}
		if req.Offset+req.Len > fileLen && !req.Resize {
			return req, errs.New(errs.OutOfRange, "validate")
		}
	} else if req.Len <= 0 {
		return req, errs.New(errs.InvalidInput, "validate")
	}

	return req, nil
}
