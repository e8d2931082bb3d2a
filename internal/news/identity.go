// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// fileDateLayout is the DDMMYYYY prefix editors put on uploaded files.
const fileDateLayout = "02012006"

// titlePrefix precedes the identity key in every publication title.
const titlePrefix = "E-Paper "

// Identity is the canonical key and display title derived from an upload's
// file name. The key doubles as the object-store folder for the pages.
type Identity struct {
	Key   string
	Title string
}

// DeriveIdentity computes the identity of an uploaded file. It never fails.
//
// The key material is the base name up to the first underscore, or the whole
// base name when there is none. Eight digits are read as DDMMYYYY and rewritten
// as YYYY-MM-DD; anything else, including eight digits that are not a real
// calendar date, is used verbatim.
//
//	19102025_epaper.pdf → 2025-10-19
//	special_edition.pdf → special
//	weekend.pdf         → weekend.pdf
func DeriveIdentity(fileName string) Identity {
	base := filepath.Base(filepath.ToSlash(fileName))
	if base == "." || base == "/" {
		base = ""
	}

	material, _, _ := strings.Cut(base, "_")

	key := material
	if isEightDigits(material) {
		if date, err := time.Parse(fileDateLayout, material); err == nil {
			key = date.Format(DateLayout)
		}
	}

	return Identity{Key: key, Title: titlePrefix + key}
}

// PublicationDate parses the key as a YYYY-MM-DD date.
func (id Identity) PublicationDate() (time.Time, error) {
	date, err := time.Parse(DateLayout, id.Key)
	if err != nil {
		return time.Time{}, fmt.Errorf("identity key %q is not a %s date", id.Key, DateLayout)
	}
	return date, nil
}

func isEightDigits(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
