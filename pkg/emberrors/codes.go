package emberrors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// ErrorCodeInvalidInput represents a malformed or missing engine.Config field.
const ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

// The first five codes below map directly onto the error taxonomy of
// spec §7: io, unsupported_type, not_found, corrupt, bind. The last
// three refine io failures of directory and file creation.
const (
	// ErrorCodeIO represents failures in input/output operations: creating
	// the storage directory, opening or reading a segment file.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeUnsupportedType is raised when a value is neither int32,
	// float64, nor a UTF-8 string.
	ErrorCodeUnsupportedType ErrorCode = "UNSUPPORTED_TYPE"

	// ErrorCodeNotFound is raised by delete of a key absent from the
	// memtable and every segment.
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrorCodeCorrupt is raised when an on-disk record fails to decode.
	ErrorCodeCorrupt ErrorCode = "CORRUPT"

	// ErrorCodeBind is raised when the listening socket cannot bind.
	ErrorCodeBind ErrorCode = "BIND_ERROR"

	// ErrorCodePermissionDenied indicates insufficient permissions to access
	// a resource. Distinct from a generic I/O error because it has a
	// specific resolution path: adjust file/directory permissions.
	ErrorCodePermissionDenied ErrorCode = "PERMISSION_DENIED"

	// ErrorCodeDiskFull indicates that the storage device has run out of space.
	ErrorCodeDiskFull ErrorCode = "DISK_FULL"

	// ErrorCodeFilesystemReadonly indicates that the filesystem is mounted read-only.
	ErrorCodeFilesystemReadonly ErrorCode = "FILESYSTEM_READONLY"
)
