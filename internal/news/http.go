// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/epaper/internal/platform/apperr"
	"github.com/taibuivan/epaper/internal/platform/constants"
	"github.com/taibuivan/epaper/internal/platform/middleware"
	requestutil "github.com/taibuivan/epaper/internal/platform/request"
	"github.com/taibuivan/epaper/internal/platform/respond"
	"github.com/taibuivan/epaper/internal/platform/validate"
	"github.com/taibuivan/epaper/pkg/pagination"
)

const (
	msgUploadSucceeded = "PDF uploaded and pages converted to images successfully."
	msgUploadFailed    = "Failed to process PDF upload."

	// multipartMemory is how much of a multipart body is buffered in memory
	// before spilling to temporary files.
	multipartMemory = 32 << 20

	defaultIngestTimeout = 5 * time.Minute
)

// Ingester runs the ingestion pipeline. [*Ingestor] satisfies it.
type Ingester interface {
	Ingest(ctx context.Context, upload Upload) (*Publication, error)
}

// HandlerOptions bounds the upload route.
type HandlerOptions struct {
	IngestTimeout  time.Duration
	MaxUploadBytes int64
}

// # Handler Implementation

// Handler implements the HTTP layer for publications.
type Handler struct {
	ingester Ingester
	service  *Service
	opts     HandlerOptions
}

// NewHandler constructs a new publication [Handler].
func NewHandler(ingester Ingester, service *Service, opts HandlerOptions) *Handler {
	if opts.IngestTimeout <= 0 {
		opts.IngestTimeout = defaultIngestTimeout
	}
	return &Handler{ingester: ingester, service: service, opts: opts}
}

// RegisterRoutes attaches the publication endpoints, normally under /api/v1/news.
//
// Reader endpoints run under the global request timeout. The upload route has
// its own, longer deadline because rasterizing and uploading a full edition
// takes minutes.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(reader chi.Router) {
		reader.Use(chimiddleware.Timeout(constants.GlobalRequestTimeout))
		reader.Get("/", handler.GetEdition)
		reader.Get("/archive", handler.ListArchive)
		reader.Get("/{id}", handler.GetPublication)
	})

	router.Group(func(uploader chi.Router) {
		uploader.Use(middleware.RequireAuth)
		uploader.Use(chimiddleware.Timeout(handler.opts.IngestTimeout))
		uploader.Post("/upload", handler.Upload)
	})
}

// # Ingestion

// uploadResponse is the success payload of the upload endpoint.
type uploadResponse struct {
	Message    string   `json:"message"`
	Images     []string `json:"images"`
	DateFolder string   `json:"dateFolder"`
	NewsID     string   `json:"newsId"`
}

/*
POST /api/v1/news/upload.

Description: Ingests one edition. The multipart field "pdf" carries the
document; its file name decides the edition date (DDMMYYYY_*.pdf).

Request:
  - pdf: multipart file

Response:
  - 200: uploadResponse: Ordered page URLs, identity key and record ID
  - 400: MISSING_FILE: No file in the request
  - 401: UNAUTHORIZED: Access token required
  - 403: FORBIDDEN: Invalid or expired token
  - 409: INGESTION_IN_PROGRESS: Same edition is being ingested
  - 413: PAYLOAD_TOO_LARGE: Document exceeds MAX_UPLOAD_BYTES
  - 422: INVALID_IDENTITY / DOCUMENT_DECODE_FAILED / EMPTY_DOCUMENT
  - 502: STORAGE_UPLOAD_FAILED: A page could not be stored
  - 500: RECORD_CREATE_FAILED: The record could not be written
*/
func (handler *Handler) Upload(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The server-wide read/write timeouts are sized for ordinary requests.
	controller := http.NewResponseController(writer)
	deadline := time.Now().Add(handler.opts.IngestTimeout)
	_ = controller.SetReadDeadline(deadline)
	_ = controller.SetWriteDeadline(deadline)

	if handler.opts.MaxUploadBytes > 0 {
		request.Body = http.MaxBytesReader(writer, request.Body, handler.opts.MaxUploadBytes)
	}

	upload, err := readUpload(request)
	if err != nil {
		respond.ErrorWithMessage(writer, request, msgUploadFailed, err)
		return
	}
	upload.UploadedBy = userID

	publication, err := handler.ingester.Ingest(request.Context(), upload)
	if err != nil {
		respond.ErrorWithMessage(writer, request, msgUploadFailed, ingestAppError(err))
		return
	}

	respond.OK(writer, uploadResponse{
		Message:    msgUploadSucceeded,
		Images:     publication.PageURLs,
		DateFolder: publication.IdentityKey,
		NewsID:     publication.ID,
	})
}

// readUpload extracts the "pdf" part. A request without it yields an empty
// Upload, which the pipeline rejects as a missing file.
func readUpload(request *http.Request) (Upload, error) {
	if err := request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return Upload{}, apperr.New("PAYLOAD_TOO_LARGE", "Document exceeds the upload size limit", http.StatusRequestEntityTooLarge, err)
		case errors.Is(err, http.ErrNotMultipart):
			return Upload{}, nil
		default:
			return Upload{}, apperr.ValidationError("Malformed multipart request")
		}
	}
	defer func() { _ = request.MultipartForm.RemoveAll() }()

	file, header, err := request.FormFile(constants.PageFormField)
	if errors.Is(err, http.ErrMissingFile) {
		return Upload{}, nil
	}
	if err != nil {
		return Upload{}, apperr.ValidationError("Malformed multipart request")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return Upload{}, apperr.Internal(err)
	}

	return Upload{FileName: header.Filename, Content: content}, nil
}

func ingestAppError(err error) error {
	// A deadline wins over the stage that observed it.
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.New("INGEST_TIMEOUT", "Ingestion did not finish in time", http.StatusGatewayTimeout, err)
	}
	var ingestErr *Error
	if errors.As(err, &ingestErr) {
		return ingestErr.AppError()
	}
	return err
}

// # Reader Endpoints

/*
GET /api/v1/news.

Description: Returns today's paper (publication timezone), or the edition of
the given date. When an edition was ingested more than once, the newest wins.

Request:
  - date: string (optional, YYYY-MM-DD)

Response:
  - 200: Publication
  - 400: VALIDATION_ERROR: Malformed date
  - 404: NOT_FOUND: No edition for that date
*/
func (handler *Handler) GetEdition(writer http.ResponseWriter, request *http.Request) {
	rawDate := request.URL.Query().Get("date")
	if rawDate == "" {
		publication, err := handler.service.Today(request.Context())
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		respond.OK(writer, publication)
		return
	}

	v := &validate.Validator{}
	if err := v.Date("date", rawDate, DateLayout).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}
	date, _ := time.Parse(DateLayout, rawDate)

	publication, err := handler.service.ByDate(request.Context(), date)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, publication)
}

/*
GET /api/v1/news/archive.

Description: Lists publications, newest edition first.

Request:
  - page: int
  - limit: int

Response:
  - 200: []Publication: Paginated list
*/
func (handler *Handler) ListArchive(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	publications, total, err := handler.service.Archive(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, publications, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/news/{id}.

Response:
  - 200: Publication
  - 400: VALIDATION_ERROR: Malformed ID
  - 404: NOT_FOUND: Unknown publication
*/
func (handler *Handler) GetPublication(writer http.ResponseWriter, request *http.Request) {
	id := requestutil.Param(request, "id")

	v := &validate.Validator{}
	if err := v.UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	publication, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, publication)
}
