//go:build !unix

package main

import (
	"errors"
	"os"
)

func openDescriptor(fd int) (*os.File, error) {
	f := os.NewFile(uintptr(fd), "fd")
	if f == nil {
		return nil, errors.New("bad descriptor")
	}
	return f, nil
}
