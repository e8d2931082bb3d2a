// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package news ingests daily newspaper documents and serves the resulting
publications.

# Ingestion pipeline

	upload ─► DeriveIdentity ─► Rasterizer.Pages ─► PageSink (fan-out) ─► Repository.Create

A file named 19102025_epaper.pdf becomes the identity key 2025-10-19, its pages
are stored as 2025-10-19/page-1.png … page-N.png, and one [Publication] row
records their URLs in page order. Nothing is recorded unless every page
reached the object store.

# Read side

[Service] answers "today's paper", lookups by date or id, and the archive.
*/
package news

import "time"

// DateLayout is the canonical identity key and publication date format.
const DateLayout = "2006-01-02"

// Publication is one ingested edition. Rows are written once and never updated.
type Publication struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	PublicationDate time.Time `json:"publicationDate"`
	IdentityKey     string    `json:"identityKey"`
	PageURLs        []string  `json:"pageUrls"`
	UploadedBy      string    `json:"uploadedBy"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PageCount returns the number of stored pages.
func (p *Publication) PageCount() int {
	return len(p.PageURLs)
}
