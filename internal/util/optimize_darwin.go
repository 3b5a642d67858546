package util

import (
	"os"

	"golang.org/x/sys/unix"
)

func init() {

	// http://adityaramesh.com/io_benchmark/#read_optimizations
	ReadOptimizations = append(ReadOptimizations, FileHandleOptimization{
		"F_RDAHEAD",
		func(fh *os.File, stat os.FileInfo) error {
			if !stat.Mode().IsRegular() {
				return os.ErrInvalid
			}

			_, err := unix.FcntlInt(fh.Fd(), unix.F_RDAHEAD, 1)
			return err
		},
	})
}
