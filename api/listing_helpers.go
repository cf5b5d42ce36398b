package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tonypoem-foundation/site-backend/errs"
	"github.com/tonypoem-foundation/site-backend/listing"
)

// listingQuery holds the filter controls a listing request may carry.
type listingQuery struct {
	topic  string
	year   string
	search string
	page   int
}

func parseListingQuery(r *http.Request) (listingQuery, error) {
	q := r.URL.Query()
	lq := listingQuery{
		topic:  q.Get("topic"),
		year:   q.Get("year"),
		search: q.Get("q"),
		page:   1,
	}
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return listingQuery{}, errs.NewInvalidFieldError("page", "must be an integer")
		}
		lq.page = page
	}
	return lq, nil
}

// loadView runs the request's single Load and applies the query. The
// controller is closed when the request ends so a late fetch is discarded.
func loadView(ctx context.Context, ctrl *listing.Controller, lq listingQuery, fetch listing.FetchFunc) (listing.View, error) {
	defer ctrl.Close()

	result := ctrl.Load(ctx, fetch)
	switch result.Status {
	case listing.Failed:
		return listing.View{}, result.Err
	case listing.Stale:
		if err := context.Cause(ctx); err != nil {
			return listing.View{}, err
		}
		return listing.View{}, errs.NewInternalError("listing load was superseded")
	}

	ctrl.SetTopic(lq.topic)
	ctrl.SetYear(lq.year)
	ctrl.SetSearch(lq.search)
	ctrl.GoTo(lq.page)
	return ctrl.View(), nil
}
