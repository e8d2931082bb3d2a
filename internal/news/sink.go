// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news

import (
	"context"
	"fmt"

	"github.com/taibuivan/epaper/internal/platform/constants"
)

// ObjectStore is the object storage contract. [objectstore.S3Store] satisfies it.
type ObjectStore interface {
	Put(ctx context.Context, key string, content []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// PageSink stores rendered pages under {identityKey}/page-{n}.png. It keeps
// no state of its own and is safe for concurrent use.
type PageSink struct {
	store ObjectStore
}

// NewPageSink wraps store.
func NewPageSink(store ObjectStore) *PageSink {
	return &PageSink{store: store}
}

// PageKey returns the object key of page n (1-indexed) of an edition.
func PageKey(identityKey string, pageNumber int) string {
	return fmt.Sprintf("%s/page-%d.png", identityKey, pageNumber)
}

// PutPage uploads one PNG page and returns its public URL. An existing object
// under the same key is overwritten. Failures are [KindStorageUpload] errors
// carrying the object key.
func (s *PageSink) PutPage(ctx context.Context, identityKey string, pageNumber int, png []byte) (string, error) {
	key := PageKey(identityKey, pageNumber)

	url, err := s.store.Put(ctx, key, png, constants.PageContentType)
	if err != nil {
		return "", newError(KindStorageUpload, StageUploading, key, err)
	}
	return url, nil
}

// DeletePage removes one page object.
func (s *PageSink) DeletePage(ctx context.Context, identityKey string, pageNumber int) error {
	return s.store.Delete(ctx, PageKey(identityKey, pageNumber))
}
