// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/epaper/internal/platform/ctxutil"
)

// # Collaborators

// Rasterizer turns a document into a lazy, page-ordered sequence of PNGs.
// [raster.Rasterizer] satisfies it.
type Rasterizer interface {
	Pages(document []byte) iter.Seq2[[]byte, error]
}

// PageUploader stores and removes page images. [PageSink] satisfies it.
type PageUploader interface {
	PutPage(ctx context.Context, identityKey string, pageNumber int, png []byte) (string, error)
	DeletePage(ctx context.Context, identityKey string, pageNumber int) error
}

// RecordStore is the write side of the publication repository.
type RecordStore interface {
	Create(ctx context.Context, publication *Publication) (string, error)
	ExistsByIdentityKey(ctx context.Context, identityKey string) (bool, error)
}

// KeyLocker serializes ingestions of the same identity key. Acquire returns
// [ErrLockHeld] when another holder has the key.
type KeyLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, err error)
}

// # Pipeline Stages

// Stage is a state of one ingestion call.
//
//	Received → Identified → Rasterized → Uploading → Committed
//
// Failed is reachable from every non-terminal stage.
type Stage int

const (
	StageReceived Stage = iota
	StageIdentified
	StageRasterized
	StageUploading
	StageCommitted
	StageFailed
)

var stageNames = [...]string{
	StageReceived:   "received",
	StageIdentified: "identified",
	StageRasterized: "rasterized",
	StageUploading:  "uploading",
	StageCommitted:  "committed",
	StageFailed:     "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// # Ingestor

const (
	defaultUploadConcurrency = 8
	defaultUploadRetries     = 3
	defaultLockTTL           = 10 * time.Minute
	cleanupTimeout           = 30 * time.Second
)

// Upload is one document submitted for ingestion.
type Upload struct {
	FileName   string
	Content    []byte
	UploadedBy string
}

// Ingestor runs the ingestion pipeline. It is safe for concurrent use; only
// the page uploads of a single call run in parallel.
type Ingestor struct {
	rasterizer  Rasterizer
	pages       PageUploader
	records     RecordStore
	locker      KeyLocker
	logger      *slog.Logger
	concurrency int
	retries     int
	lockTTL     time.Duration
	newBackOff  func() backoff.BackOff
}

// IngestorOption customizes an [Ingestor].
type IngestorOption func(*Ingestor)

// WithUploadConcurrency bounds the number of simultaneous page uploads.
// Zero issues every page of an edition at once; negative values are ignored.
func WithUploadConcurrency(n int) IngestorOption {
	return func(in *Ingestor) {
		if n >= 0 {
			in.concurrency = n
		}
	}
}

// WithUploadRetries sets how many times a failed page upload is retried.
// Zero means a single attempt.
func WithUploadRetries(n int) IngestorOption {
	return func(in *Ingestor) {
		if n >= 0 {
			in.retries = n
		}
	}
}

// WithLockTTL sets the expiry of the per-key ingestion lock.
func WithLockTTL(ttl time.Duration) IngestorOption {
	return func(in *Ingestor) {
		if ttl > 0 {
			in.lockTTL = ttl
		}
	}
}

// WithBackOff replaces the delay policy between upload retries.
func WithBackOff(factory func() backoff.BackOff) IngestorOption {
	return func(in *Ingestor) {
		if factory != nil {
			in.newBackOff = factory
		}
	}
}

// NewIngestor wires the pipeline. A nil locker disables per-key serialization.
func NewIngestor(rasterizer Rasterizer, pages PageUploader, records RecordStore, locker KeyLocker, logger *slog.Logger, opts ...IngestorOption) *Ingestor {
	ingestor := &Ingestor{
		rasterizer:  rasterizer,
		pages:       pages,
		records:     records,
		locker:      locker,
		logger:      logger,
		concurrency: defaultUploadConcurrency,
		retries:     defaultUploadRetries,
		lockTTL:     defaultLockTTL,
		newBackOff:  defaultBackOff,
	}
	for _, opt := range opts {
		opt(ingestor)
	}
	return ingestor
}

func defaultBackOff() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 250 * time.Millisecond
	policy.MaxInterval = 4 * time.Second
	policy.MaxElapsedTime = time.Minute
	return policy
}

/*
Ingest runs one upload through the pipeline and returns the committed
publication.

Steps:
 1. Reject an empty payload ([KindMissingFile]) without rasterizing.
 2. Derive the identity; a key that is not a date is [KindInvalidIdentity].
 3. Take the per-key lock ([KindIngestionInProgress] / [KindLockUnavailable]).
 4. Rasterize every page ([KindDecode], [KindEmptyDocument]).
 5. Upload pages concurrently with bounded retry ([KindStorageUpload]).
 6. Create the record ([KindRecordCreate]).

Objects uploaded by a failed call are deleted unless a committed publication
already uses the same identity key.
*/
func (in *Ingestor) Ingest(ctx context.Context, upload Upload) (*Publication, error) {
	run := in.startRun(ctx, upload)

	// Received → Identified
	if len(upload.Content) == 0 {
		return nil, run.fail(ctx, newError(KindMissingFile, StageReceived, "", nil))
	}

	identity := DeriveIdentity(upload.FileName)
	publicationDate, err := identity.PublicationDate()
	if err != nil {
		return nil, run.fail(ctx, newError(KindInvalidIdentity, StageReceived, identity.Key, err))
	}
	run.logger = run.logger.With(slog.String("identity_key", identity.Key))
	run.advance(ctx, StageIdentified)

	release, ingestErr := in.lock(ctx, identity.Key)
	if ingestErr != nil {
		return nil, run.fail(ctx, ingestErr)
	}
	defer func() {
		releaseCtx, cancel := ctxutil.Detach(ctx, cleanupTimeout)
		defer cancel()
		if err := release(releaseCtx); err != nil {
			run.logger.WarnContext(ctx, "ingest_lock_release_failed", slog.Any("error", err))
		}
	}()

	// Identified → Rasterized
	pages, err := in.rasterize(ctx, identity.Key, upload.Content)
	if err != nil {
		return nil, run.fail(ctx, err)
	}
	run.advance(ctx, StageRasterized, slog.Int("pages", len(pages)))

	// Rasterized → Uploading
	run.advance(ctx, StageUploading, slog.Int("concurrency", in.uploadWidth(len(pages))))
	urls, err := in.uploadAll(ctx, identity.Key, pages)
	if err != nil {
		in.compensate(ctx, run, identity.Key, urls)
		return nil, run.fail(ctx, err)
	}

	// Uploading → Committed
	publication := &Publication{
		Title:           identity.Title,
		PublicationDate: publicationDate,
		IdentityKey:     identity.Key,
		PageURLs:        urls,
		UploadedBy:      upload.UploadedBy,
	}

	id, err := in.records.Create(ctx, publication)
	if err != nil {
		in.compensate(ctx, run, identity.Key, urls)
		return nil, run.fail(ctx, newError(KindRecordCreate, StageUploading, identity.Key, err))
	}
	publication.ID = id

	run.advance(ctx, StageCommitted,
		slog.String("news_id", id),
		slog.Int64("elapsed_ms", time.Since(run.started).Milliseconds()),
	)
	return publication, nil
}

// # Pipeline Steps

func (in *Ingestor) lock(ctx context.Context, key string) (func(context.Context) error, *Error) {
	if in.locker == nil {
		return func(context.Context) error { return nil }, nil
	}

	release, err := in.locker.Acquire(ctx, key, in.lockTTL)
	switch {
	case errors.Is(err, ErrLockHeld):
		return nil, newError(KindIngestionInProgress, StageIdentified, key, err)
	case err != nil:
		return nil, newError(KindLockUnavailable, StageIdentified, key, err)
	}
	return release, nil
}

// rasterize materializes the lazy page sequence so uploads can be indexed by page.
func (in *Ingestor) rasterize(ctx context.Context, key string, document []byte) ([][]byte, error) {
	var pages [][]byte
	for png, err := range in.rasterizer.Pages(document) {
		if err != nil {
			return nil, newError(KindDecode, StageIdentified, key, err)
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("rasterize %s: %w", key, err)
		}
		pages = append(pages, png)
	}

	if len(pages) == 0 {
		return nil, newError(KindEmptyDocument, StageIdentified, key, nil)
	}
	return pages, nil
}

// uploadWidth is how many of pages uploads run at the same time.
func (in *Ingestor) uploadWidth(pages int) int {
	if in.concurrency == 0 {
		return pages
	}
	return min(in.concurrency, pages)
}

// uploadAll stores every page and returns their URLs indexed by page. On
// failure the returned slice holds the URLs of the pages that did succeed.
func (in *Ingestor) uploadAll(ctx context.Context, key string, pages [][]byte) ([]string, error) {
	urls := make([]string, len(pages))

	group, groupCtx := errgroup.WithContext(ctx)
	if in.concurrency > 0 {
		group.SetLimit(in.concurrency)
	}

	for index, png := range pages {
		group.Go(func() error {
			url, err := in.putWithRetry(groupCtx, key, index+1, png)
			if err != nil {
				return err
			}
			urls[index] = url
			return nil
		})
	}

	return urls, group.Wait()
}

func (in *Ingestor) putWithRetry(ctx context.Context, key string, pageNumber int, png []byte) (string, error) {
	var url string

	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		var err error
		url, err = in.pages.PutPage(ctx, key, pageNumber, png)
		return err
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(in.newBackOff(), uint64(in.retries)), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		var ingestErr *Error
		if errors.As(err, &ingestErr) {
			return "", err
		}
		return "", newError(KindStorageUpload, StageUploading, PageKey(key, pageNumber), err)
	}
	return url, nil
}

// compensate deletes the objects a failed call uploaded. Objects are left in
// place when a committed publication with the same key exists, since the
// keys are shared with it.
func (in *Ingestor) compensate(ctx context.Context, run *run, key string, urls []string) {
	uploaded := 0
	for _, url := range urls {
		if url != "" {
			uploaded++
		}
	}
	if uploaded == 0 {
		return
	}

	cleanupCtx, cancel := ctxutil.Detach(ctx, cleanupTimeout)
	defer cancel()

	exists, err := in.records.ExistsByIdentityKey(cleanupCtx, key)
	if err != nil {
		run.logger.WarnContext(ctx, "ingest_cleanup_skipped", slog.String("reason", "lookup_failed"), slog.Any("error", err))
		return
	}
	if exists {
		run.logger.InfoContext(ctx, "ingest_cleanup_skipped", slog.String("reason", "edition_exists"), slog.Int("objects", uploaded))
		return
	}

	deleted := 0
	for index, url := range urls {
		if url == "" {
			continue
		}
		if err := in.pages.DeletePage(cleanupCtx, key, index+1); err != nil {
			run.logger.WarnContext(ctx, "ingest_cleanup_delete_failed",
				slog.String("object_key", PageKey(key, index+1)),
				slog.Any("error", err),
			)
			continue
		}
		deleted++
	}

	run.logger.InfoContext(ctx, "ingest_cleanup_finished", slog.Int("deleted", deleted), slog.Int("orphaned", uploaded-deleted))
}

// # Run Tracking

// run carries the state and logger of one Ingest call.
type run struct {
	logger  *slog.Logger
	stage   Stage
	started time.Time
}

func (in *Ingestor) startRun(ctx context.Context, upload Upload) *run {
	logger := in.logger.With(
		slog.String("file_name", upload.FileName),
		slog.String("uploaded_by", upload.UploadedBy),
	)
	if requestID := ctxutil.GetRequestID(ctx); requestID != "" {
		logger = logger.With(slog.String("request_id", requestID))
	}

	r := &run{logger: logger, stage: StageReceived, started: time.Now()}
	r.logger.InfoContext(ctx, "ingest_stage", slog.String("stage", StageReceived.String()), slog.Int("bytes", len(upload.Content)))
	return r
}

func (r *run) advance(ctx context.Context, next Stage, attrs ...any) {
	attrs = append([]any{
		slog.String("from", r.stage.String()),
		slog.String("stage", next.String()),
	}, attrs...)
	r.stage = next
	r.logger.InfoContext(ctx, "ingest_stage", attrs...)
}

func (r *run) fail(ctx context.Context, err error) error {
	var ingestErr *Error
	if errors.As(err, &ingestErr) {
		ingestErr.Stage = r.stage
	}

	r.logger.WarnContext(ctx, "ingest_stage",
		slog.String("from", r.stage.String()),
		slog.String("stage", StageFailed.String()),
		slog.Any("error", err),
	)
	r.stage = StageFailed
	return err
}
