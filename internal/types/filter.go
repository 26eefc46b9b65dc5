package types

import (
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

const (
	FILTER_DEFAULT_LIMIT = 50
	FILTER_MAX_LIMIT     = 1000

	OrderDesc = "desc"
	OrderAsc  = "asc"
)

// JobFileFilter narrows a job file listing. The store returns every document
// of the collection, so filtering and paging happen in the service.
type JobFileFilter struct {
	VehicleNo *string `json:"vehicle_no,omitempty" form:"vehicle_no"`
	Paid      *bool   `json:"paid,omitempty" form:"paid"`
	Limit     int     `json:"limit,omitempty" form:"limit"`
	Offset    int     `json:"offset,omitempty" form:"offset"`
	Order     string  `json:"order,omitempty" form:"order"`
}

// NewDefaultJobFileFilter returns a filter with the defaults applied
func NewDefaultJobFileFilter() *JobFileFilter {
	return &JobFileFilter{
		Limit: FILTER_DEFAULT_LIMIT,
		Order: OrderDesc,
	}
}

// NewNoLimitJobFileFilter is used by exports
func NewNoLimitJobFileFilter() *JobFileFilter {
	return &JobFileFilter{Order: OrderDesc}
}

func (f *JobFileFilter) Validate() error {
	if f.Limit < 0 || f.Limit > FILTER_MAX_LIMIT {
		return ierr.NewError("invalid limit").
			WithHintf("limit must be between 0 and %d", FILTER_MAX_LIMIT).
			Mark(ierr.ErrValidation)
	}
	if f.Offset < 0 {
		return ierr.NewError("invalid offset").
			WithHint("offset must be non negative").
			Mark(ierr.ErrValidation)
	}
	if f.Order != "" && f.Order != OrderAsc && f.Order != OrderDesc {
		return ierr.NewError("invalid order").
			WithHint("order must be asc or desc").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsUnlimited reports whether paging is disabled
func (f *JobFileFilter) IsUnlimited() bool {
	return f.Limit == 0
}
