package server

import (
	"errors"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// maxFileSizeField is the optional hidden form field that lowers the per-file
// limit for one form. It only applies to file parts that follow it.
const maxFileSizeField = "MAX_FILE_SIZE"

// UploadedFile is one received file part, written to a temporary file.
// It lives for a single request; call cleanup when done with it.
type UploadedFile struct {
	Field    string
	OrigName string // filename exactly as the client sent it
	TmpPath  string
	Size     int64
	Status   UploadErrorCode
}

func (f *UploadedFile) cleanup() {
	if f.TmpPath != "" {
		_ = os.Remove(f.TmpPath)
		f.TmpPath = ""
	}
}

// receiver streams a multipart body and enforces the per-request limits.
type receiver struct {
	maxUploadSize  int64
	maxPostSize    int64
	maxFileUploads int
	tempDir        string
}

func newReceiver(cfg Config) receiver {
	return receiver{
		maxUploadSize:  cfg.MaxUploadSize,
		maxPostSize:    cfg.MaxPostSize,
		maxFileUploads: cfg.MaxFileUploads,
		tempDir:        cfg.TempDir,
	}
}

// receive returns the first file part named field. Its only error is
// errNoFileField: the body is not multipart, is over the post limit, or simply
// has no such part. Transfer problems with the part itself, including a
// missing or unwritable temp dir, are reported through UploadedFile.Status.
func (rc receiver) receive(w http.ResponseWriter, r *http.Request, field string) (*UploadedFile, error) {
	// An oversized body is dropped without being read.
	if rc.maxPostSize > 0 && r.ContentLength > rc.maxPostSize {
		return nil, errNoFileField
	}
	if rc.maxPostSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rc.maxPostSize)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, errNoFileField
	}

	var (
		formLimit int64
		fileParts int
	)
	for {
		part, err := mr.NextPart()
		if err != nil {
			// io.EOF, or the body broke before the file part started.
			return nil, errNoFileField
		}

		filename, isFile := partFileName(part.Header.Get("Content-Disposition"))
		if !isFile {
			if part.FormName() == maxFileSizeField {
				formLimit = readFormLimit(part)
			}
			_ = part.Close()
			continue
		}

		fileParts++
		if part.FormName() != field || (rc.maxFileUploads > 0 && fileParts > rc.maxFileUploads) {
			_ = part.Close()
			continue
		}

		f := rc.store(part, field, filename, formLimit)
		_ = part.Close()
		return f, nil
	}
}

// store copies one part to a temporary file and classifies the outcome.
// On any non-OK status the temporary file is already gone.
func (rc receiver) store(part io.Reader, field, filename string, formLimit int64) *UploadedFile {
	f := &UploadedFile{Field: field, OrigName: filename}
	if filename == "" {
		f.Status = UploadErrNoFile
		return f
	}

	dir := rc.tempDir
	if dir == "" {
		dir = os.TempDir()
	}

	tmpPath := filepath.Join(dir, tempFilePrefix+uuid.NewString()+tempFileSuffix)
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, storedFilePerm)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			f.Status = UploadErrNoTmpDir
		} else {
			f.Status = UploadErrCantWrite
		}
		return f
	}
	f.TmpPath = tmpPath

	limit, overCode := rc.effectiveLimit(formLimit)
	src := part
	if limit > 0 {
		// One extra byte tells "exactly at the limit" from "over it".
		src = io.LimitReader(part, limit+1)
	}

	sink := &fileSink{f: tmp}
	n, copyErr := io.Copy(sink, src)
	closeErr := tmp.Close()
	f.Size = n

	switch {
	case sink.err != nil:
		f.Status = UploadErrCantWrite
	case copyErr != nil:
		f.Status = UploadErrPartial
	case closeErr != nil:
		f.Status = UploadErrCantWrite
	case limit > 0 && n > limit:
		f.Status = overCode
	}

	if f.Status != UploadErrOK {
		f.cleanup()
	}
	return f
}

// effectiveLimit picks the tighter of the server and form limits, along with
// the code to report when it is exceeded. Zero means unlimited.
func (rc receiver) effectiveLimit(formLimit int64) (int64, UploadErrorCode) {
	if formLimit > 0 && (rc.maxUploadSize <= 0 || formLimit < rc.maxUploadSize) {
		return formLimit, UploadErrFormSize
	}
	return rc.maxUploadSize, UploadErrIniSize
}

// partFileName extracts the raw filename parameter of a part. isFile is
// false when the part has no filename parameter at all, i.e. it is a plain
// form value rather than a file input.
//
// multipart.Part.FileName is not used since it strips directories with the
// host's path rules; we want the client's string untouched.
func partFileName(contentDisposition string) (filename string, isFile bool) {
	if contentDisposition == "" {
		return "", false
	}
	disp, params, err := mime.ParseMediaType(contentDisposition)
	if err != nil || disp != "form-data" {
		return "", false
	}
	filename, isFile = params["filename"]
	return filename, isFile
}

// readFormLimit parses a MAX_FILE_SIZE value. Garbage is treated as unset.
func readFormLimit(r io.Reader) int64 {
	raw, err := io.ReadAll(io.LimitReader(r, 32))
	if err != nil {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// fileSink remembers write errors so they can be told apart from read
// errors after io.Copy returns.
type fileSink struct {
	f   *os.File
	err error
}

func (s *fileSink) Write(p []byte) (int, error) {
	n, err := s.f.Write(p)
	if err != nil {
		s.err = err
	}
	return n, err
}
