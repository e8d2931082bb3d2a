// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/taibuivan/epaper/internal/platform/apperr"
)

// # Error Taxonomy

// Kind classifies an ingestion failure. The set is closed: every Kind has an
// entry in each table below, enforced at compile time.
type Kind int

const (
	KindMissingFile Kind = iota
	KindInvalidIdentity
	KindDecode
	KindEmptyDocument
	KindStorageUpload
	KindRecordCreate
	KindIngestionInProgress
	KindLockUnavailable

	kindCount
)

var kindNames = [...]string{
	KindMissingFile:         "MissingFileError",
	KindInvalidIdentity:     "InvalidIdentityError",
	KindDecode:              "DecodeError",
	KindEmptyDocument:       "EmptyDocumentError",
	KindStorageUpload:       "StorageUploadError",
	KindRecordCreate:        "RecordCreateError",
	KindIngestionInProgress: "IngestionInProgressError",
	KindLockUnavailable:     "LockUnavailableError",
}

var kindCodes = [...]string{
	KindMissingFile:         "MISSING_FILE",
	KindInvalidIdentity:     "INVALID_IDENTITY",
	KindDecode:              "DOCUMENT_DECODE_FAILED",
	KindEmptyDocument:       "EMPTY_DOCUMENT",
	KindStorageUpload:       "STORAGE_UPLOAD_FAILED",
	KindRecordCreate:        "RECORD_CREATE_FAILED",
	KindIngestionInProgress: "INGESTION_IN_PROGRESS",
	KindLockUnavailable:     "LOCK_UNAVAILABLE",
}

var kindMessages = [...]string{
	KindMissingFile:         "No PDF file provided in request body.",
	KindInvalidIdentity:     "File name does not start with a DDMMYYYY date",
	KindDecode:              "Document could not be decoded",
	KindEmptyDocument:       "Document has no pages",
	KindStorageUpload:       "Failed to upload page image",
	KindRecordCreate:        "Failed to record publication",
	KindIngestionInProgress: "Another upload for this edition is in progress",
	KindLockUnavailable:     "Ingestion is temporarily unavailable",
}

var kindStatuses = [...]int{
	KindMissingFile:         http.StatusBadRequest,
	KindInvalidIdentity:     http.StatusUnprocessableEntity,
	KindDecode:              http.StatusUnprocessableEntity,
	KindEmptyDocument:       http.StatusUnprocessableEntity,
	KindStorageUpload:       http.StatusBadGateway,
	KindRecordCreate:        http.StatusInternalServerError,
	KindIngestionInProgress: http.StatusConflict,
	KindLockUnavailable:     http.StatusServiceUnavailable,
}

// Each table must have exactly kindCount entries; a missing or extra row
// makes the index below constant and out of range.
var (
	_ = [1]struct{}{}[len(kindNames)-int(kindCount)]
	_ = [1]struct{}{}[len(kindCodes)-int(kindCount)]
	_ = [1]struct{}{}[len(kindMessages)-int(kindCount)]
	_ = [1]struct{}{}[len(kindStatuses)-int(kindCount)]
)

// String returns the taxonomy name, e.g. "StorageUploadError".
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Code returns the machine-readable API error code.
func (k Kind) Code() string { return kindCodes[k] }

// HTTPStatus returns the response status for failures of this kind.
func (k Kind) HTTPStatus() int { return kindStatuses[k] }

// Kinds lists every Kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// # Error Value

// Error is the failure returned by [Ingestor.Ingest]. It records the stage the
// pipeline was in, the key involved (the object key for storage failures,
// the identity key otherwise) and the underlying cause.
type Error struct {
	Kind  Kind
	Stage Stage
	Key   string
	Err   error
}

// Sentinels for errors.Is. Matching compares Kind only.
var (
	ErrMissingFile         = &Error{Kind: KindMissingFile}
	ErrInvalidIdentity     = &Error{Kind: KindInvalidIdentity}
	ErrDecode              = &Error{Kind: KindDecode}
	ErrEmptyDocument       = &Error{Kind: KindEmptyDocument}
	ErrStorageUpload       = &Error{Kind: KindStorageUpload}
	ErrRecordCreate        = &Error{Kind: KindRecordCreate}
	ErrIngestionInProgress = &Error{Kind: KindIngestionInProgress}
	ErrLockUnavailable     = &Error{Kind: KindLockUnavailable}
)

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Key != "" {
		fmt.Fprintf(&b, " [%s]", e.Key)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Kind == e.Kind
}

// AppError converts the failure for the HTTP layer. Client errors include the
// cause; server errors keep it for logging only.
func (e *Error) AppError() *apperr.AppError {
	message := kindMessages[e.Kind]
	status := e.Kind.HTTPStatus()

	switch {
	case e.Kind == KindStorageUpload && e.Key != "":
		message += ": " + e.Key
	case status < http.StatusInternalServerError && e.Err != nil:
		message += ": " + e.Err.Error()
	}

	return apperr.New(e.Kind.Code(), message, status, e)
}

func newError(kind Kind, stage Stage, key string, cause error) *Error {
	return &Error{Kind: kind, Stage: stage, Key: key, Err: cause}
}
