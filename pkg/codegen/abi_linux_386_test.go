//go:build linux && 386

package codegen

import (
	"testing"

	"golang.org/x/sys/unix"
)

// The runtime helpers this package emits (emitReportError, emitNewlineProc,
// emitDisplayProc) hard-code the Linux int 0x80 syscall numbers for write
// and exit as literal immediates in the generated assembly text — see
// helpers.go and builtins.go. This test pins those literals against the
// kernel's own syscall table (golang.org/x/sys/unix) so they can never
// silently drift from the ABI the generated programs target.
func TestHardcodedSyscallNumbersMatchKernelABI(t *testing.T) {
	if got, want := unix.SYS_WRITE, 4; got != want {
		t.Errorf("unix.SYS_WRITE = %d, want %d (pkg/codegen hard-codes __NR_write=4)", got, want)
	}
	if got, want := unix.SYS_EXIT, 1; got != want {
		t.Errorf("unix.SYS_EXIT = %d, want %d (pkg/codegen hard-codes __NR_exit=1)", got, want)
	}
}
