//go:build unix

package main

import (
	"os"
	"syscall"
)

// openDescriptor returns a file on a duplicate of fd. The duplicate shares
// the file offset, so closing it leaves fd open and positioned where the
// read stopped.
func openDescriptor(fd int) (*os.File, error) {
	dup, err := syscall.Dup(fd)
	if err != nil {
		return nil, err
	}
	return os.NewFile(uintptr(dup), "fd"), nil
}
