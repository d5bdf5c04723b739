// Package emberrors gives every layer of the storage engine a consistent,
// structured way to report what failed, where, and why.
//
// Two domain types cover it: ValidationError for bad engine.Config at
// construction time, and EngineError for everything that can go wrong
// once the engine is running — get/put/delete failures, corrupt records,
// and segment/directory I/O. Both carry an ErrorCode from spec §7's
// taxonomy and a free-form detail bag, and both support errors.Is/
// errors.As through their underlying cause.
package emberrors

import (
	"os"
	"syscall"
)

// ClassifyDirectoryCreationError analyzes a segment storage directory
// creation failure and returns an EngineError with a code matching the
// underlying system error.
func ClassifyDirectoryCreationError(err error, path string) error {
	if os.IsPermission(err) {
		return NewEngineError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to create segment directory",
		).WithOperation("CreateStorageDir").WithDetail("path", path)
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewEngineError(
					err, ErrorCodeDiskFull,
					"insufficient disk space to create segment directory",
				).WithOperation("CreateStorageDir").WithDetail("path", path)
			case syscall.EROFS:
				return NewEngineError(
					err, ErrorCodeFilesystemReadonly,
					"cannot create directory on read-only filesystem",
				).WithOperation("CreateStorageDir").WithDetail("path", path)
			}
		}
	}

	return NewEngineError(
		err, ErrorCodeIO, "failed to create segment directory",
	).WithOperation("CreateStorageDir").WithDetail("path", path)
}

// ClassifyFileOpenError analyzes a segment file open failure and returns
// an EngineError with a code matching the underlying system error.
func ClassifyFileOpenError(err error, filePath, fileName string) error {
	if os.IsPermission(err) {
		return NewEngineError(
			err, ErrorCodePermissionDenied,
			"insufficient permissions to open segment file",
		).WithOperation("OpenSegmentFile").WithDetail("path", filePath).WithDetail("fileName", fileName)
	}

	if pathErr, ok := err.(*os.PathError); ok {
		if errno, ok := pathErr.Err.(syscall.Errno); ok {
			switch errno {
			case syscall.ENOSPC:
				return NewEngineError(
					err, ErrorCodeDiskFull,
					"insufficient disk space to create segment file",
				).WithOperation("OpenSegmentFile").WithDetail("path", filePath).WithDetail("fileName", fileName)
			case syscall.EROFS:
				return NewEngineError(
					err, ErrorCodeFilesystemReadonly,
					"cannot create file on read-only filesystem",
				).WithOperation("OpenSegmentFile").WithDetail("path", filePath).WithDetail("fileName", fileName)
			}
		}
	}

	return NewEngineError(err, ErrorCodeIO, "failed to open segment file").
		WithOperation("OpenSegmentFile").
		WithDetail("path", filePath).
		WithDetail("fileName", fileName)
}
