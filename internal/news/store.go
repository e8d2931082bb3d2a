// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package news

import (
	"context"
	"time"
)

// # Publication Data Access

// Repository is the persistence contract for publications.
type Repository interface {
	RecordStore

	/*
		FindByID returns the publication with the given ID.

		Returns:
		  - *Publication: The stored edition
		  - error: apperr.NotFound if missing
	*/
	FindByID(context context.Context, id string) (*Publication, error)

	/*
		FindLatestByDate returns the most recently created publication for a
		calendar date. Re-ingesting an edition creates a new row; the newest wins.

		Returns:
		  - *Publication: The newest edition of that date
		  - error: apperr.NotFound if nothing was published that day
	*/
	FindLatestByDate(context context.Context, date time.Time) (*Publication, error)

	/*
		List returns publications ordered by date, newest first.

		Returns:
		  - []*Publication: One page of editions
		  - int: Total number of publications
		  - error: Storage failures
	*/
	List(context context.Context, limit, offset int) ([]*Publication, int, error)
}
