// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// NewsPublicationTable represents the 'news.publication' table
type NewsPublicationTable struct {
	Table           string
	ID              string
	Title           string
	PublicationDate string
	IdentityKey     string
	PageURLs        string
	UploadedBy      string
	CreatedAt       string
}

// NewsPublication is the schema definition for news.publication
var NewsPublication = NewsPublicationTable{
	Table:           "news.publication",
	ID:              "id",
	Title:           "title",
	PublicationDate: "publicationdate",
	IdentityKey:     "identitykey",
	PageURLs:        "pageurls",
	UploadedBy:      "uploadedby",
	CreatedAt:       "createdat",
}

// Columns returns all standard column names
func (t NewsPublicationTable) Columns() []string {
	return []string{
		t.ID, t.Title, t.PublicationDate, t.IdentityKey,
		t.PageURLs, t.UploadedBy, t.CreatedAt,
	}
}
