// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package raster renders document pages to PNG images using MuPDF (go-fitz).

Pages are produced lazily through an [iter.Seq2]: the document is opened when
iteration starts and each page is rendered only when the consumer asks for it.
A sequence may be ranged over once.

	for png, err := range rasterizer.Pages(pdf) {
	    if err != nil { ... }
	}
*/
package raster

import (
	"errors"
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/gen2brain/go-fitz"
)

// baseDPI is the PDF user-space resolution; scale 1.0 renders at 72 DPI.
const baseDPI = 72.0

// MaxScale bounds the render scale accepted by [New].
const MaxScale = 8.0

var (
	// ErrDecode is yielded when the payload cannot be opened or a page cannot be rendered.
	ErrDecode = errors.New("raster: document could not be decoded")

	// ErrSequenceConsumed is yielded when a page sequence is ranged over a second time.
	ErrSequenceConsumed = errors.New("raster: page sequence already consumed")

	// ErrInvalidScale is returned by [New] for a scale outside (0, MaxScale].
	ErrInvalidScale = errors.New("raster: scale must be in (0, 8]")
)

// Rasterizer renders pages at a fixed resolution. It holds no per-document
// state and is safe for concurrent use.
type Rasterizer struct {
	dpi float64
}

// New returns a Rasterizer rendering at 72 × scale DPI.
func New(scale float64) (*Rasterizer, error) {
	if scale <= 0 || scale > MaxScale {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidScale, scale)
	}
	return &Rasterizer{dpi: baseDPI * scale}, nil
}

// DPI reports the render resolution.
func (r *Rasterizer) DPI() float64 {
	return r.dpi
}

// Pages returns the PNG-encoded pages of document in document order.
//
// Any failure is yielded once, wrapped in [ErrDecode], and ends the sequence.
// A document with no pages yields nothing.
func (r *Rasterizer) Pages(document []byte) iter.Seq2[[]byte, error] {
	var consumed atomic.Bool

	return func(yield func([]byte, error) bool) {
		if consumed.Swap(true) {
			yield(nil, ErrSequenceConsumed)
			return
		}

		if len(document) == 0 {
			yield(nil, fmt.Errorf("%w: empty payload", ErrDecode))
			return
		}

		doc, err := fitz.NewFromMemory(document)
		if err != nil {
			yield(nil, fmt.Errorf("%w: %w", ErrDecode, err))
			return
		}
		defer doc.Close()

		for index := range doc.NumPage() {
			png, err := doc.ImagePNG(index, r.dpi)
			if err != nil {
				yield(nil, fmt.Errorf("%w: page %d: %w", ErrDecode, index+1, err))
				return
			}
			if !yield(png, nil) {
				return
			}
		}
	}
}
