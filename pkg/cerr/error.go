package cerr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime"

	"github.com/kazz187/agentconsole/pkg/clog"
	"github.com/kazz187/agentconsole/pkg/storage"
)

type Error struct {
	Code  Code
	Msg   string // message shown to the operator, usually the backend's own text
	Err   error  // underlying cause, kept for logs
	Stack string
}

func NewError(code Code, msg string, underlying error) *Error {
	err := &Error{
		Code: code,
		Msg:  msg,
		Err:  underlying,
	}
	if code.Severe() {
		stackTrace := make([]byte, 2048)
		n := runtime.Stack(stackTrace, false)
		err.Stack = string(stackTrace[0:n])
	}
	return err
}

func (e *Error) Error() string {
	if e.Msg == "" && e.Err != nil {
		return fmt.Sprintf("[%s] %s", e.Code.String(), e.Err.Error())
	}
	if e.Err == nil {
		return fmt.Sprintf("[%s] %s", e.Code.String(), e.Msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Msg, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

func IsCode(err error, code Code) bool {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code == code
	}
	return false
}

// Message returns the human readable part of err. A *Error contributes its
// Msg; anything else, or an empty Msg, yields fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var cerr *Error
	if errors.As(err, &cerr) && cerr.Msg != "" {
		return cerr.Msg
	}
	return fallback
}

// FromTransportError classifies a failure that happened before any response
// was received. There is no backend message, so Message falls back to the
// caller's wording.
func FromTransportError(err error) *Error {
	switch {
	case errors.Is(err, context.Canceled):
		return NewError(Canceled, "", err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(DeadlineExceeded, "", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewError(DeadlineExceeded, "", err)
	}
	return NewError(Unavailable, "", err)
}

// StorageOp is what was being done to a locally kept blob.
type StorageOp string

const (
	StorageRead   StorageOp = "read"
	StorageWrite  StorageOp = "write"
	StorageDelete StorageOp = "delete"
)

// FromStorageError classifies a pkg/storage failure on the named blob. A
// missing blob is NotFound; a write never reports that.
func FromStorageError(op StorageOp, what string, err error) *Error {
	if op != StorageWrite && errors.Is(err, storage.ErrNotFound) {
		return NewError(NotFound, "no stored "+what, err)
	}
	return NewError(Internal, fmt.Sprintf("could not %s stored %s", op, what), err)
}

type httpError struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSONError renders err in the backend's error envelope.
func WriteJSONError(ctx context.Context, rw http.ResponseWriter, err error) {
	var cErr *Error
	if !errors.As(err, &cErr) {
		cErr = NewError(Unknown, "unknown error", err)
	}
	clog.AddError(ctx, err)
	if cErr.Stack != "" {
		clog.AddStack(ctx, cErr.Stack)
	}

	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(true)
	if encErr := enc.Encode(httpError{Code: cErr.Code.String(), Message: cErr.Msg}); encErr != nil {
		buf = bytes.NewBufferString(`{"success":false,"code":"internal","message":"server error"}`)
		clog.AddError(ctx, errors.Join(err, encErr))
	}
	rw.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.WriteHeader(cErr.Code.HTTPCode())
	if _, wErr := rw.Write(buf.Bytes()); wErr != nil {
		clog.AddError(ctx, errors.Join(err, wErr))
	}
}
