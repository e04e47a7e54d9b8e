package server

import "errors"

// UploadErrorCode classifies how the transfer of one file part went. The
// numbers are the ones web clients already know from classic multipart
// upload handlers, so they are returned to callers unchanged.
type UploadErrorCode int

const (
	UploadErrOK        UploadErrorCode = 0
	UploadErrIniSize   UploadErrorCode = 1 // larger than the server's max upload size
	UploadErrFormSize  UploadErrorCode = 2 // larger than the form's MAX_FILE_SIZE
	UploadErrPartial   UploadErrorCode = 3 // body ended before the part did
	UploadErrNoFile    UploadErrorCode = 4 // field present, no file chosen
	UploadErrNoTmpDir  UploadErrorCode = 6
	UploadErrCantWrite UploadErrorCode = 7
)

func (c UploadErrorCode) String() string {
	switch c {
	case UploadErrOK:
		return "ok"
	case UploadErrIniSize:
		return "exceeds max upload size"
	case UploadErrFormSize:
		return "exceeds form MAX_FILE_SIZE"
	case UploadErrPartial:
		return "partially uploaded"
	case UploadErrNoFile:
		return "no file uploaded"
	case UploadErrNoTmpDir:
		return "missing temporary directory"
	case UploadErrCantWrite:
		return "failed to write temporary file"
	default:
		return "unknown upload error"
	}
}

// errNoFileField means the request carried no usable part named "file".
var errNoFileField = errors.New("no file field")
