package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tonypoem-foundation/site-backend/content"
	"github.com/tonypoem-foundation/site-backend/counter"
	"github.com/tonypoem-foundation/site-backend/errs"
	"github.com/tonypoem-foundation/site-backend/models"
)

// latestPostsLimit is how many posts the home page shows.
const latestPostsLimit = 3

type pageHandler struct {
	responder     Responder
	logger        zerolog.Logger
	repo          *content.Repository
	frameInterval time.Duration
}

func newPageHandler(repo *content.Repository, frameInterval time.Duration) pageHandler {
	logger := log.With().Str("handlerName", "pageHandler").Logger()

	return pageHandler{
		responder:     NewResponder(logger),
		logger:        logger,
		repo:          repo,
		frameInterval: frameInterval,
	}
}

// getHome returns the landing page: impact stats, latest posts, testimonials
// @Summary Home page
// @Tags Pages
// @Produce json
// @Success 200 {object} HomeResponse
// @Router / [get]
func (h pageHandler) getHome() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			mu       sync.Mutex
			response = HomeResponse{
				Stats:        counter.ImpactTargets,
				LatestPosts:  []BlogCard{},
				Testimonials: []ProfileCard{},
			}
		)
		sectionFailed := func(section string, err error) {
			h.logger.Warn().Err(err).Str("section", section).Msg("Home page section failed to load")
			mu.Lock()
			defer mu.Unlock()
			if response.Errors == nil {
				response.Errors = map[string]string{}
			}
			response.Errors[section] = errorDetails(err)
		}

		var g errgroup.Group
		g.Go(func() error {
			posts, err := h.repo.ListFiltered(r.Context(), models.Blogs, content.Filter{OrderBy: "date", Limit: latestPostsLimit})
			if err != nil {
				sectionFailed("latestPosts", err)
				return nil
			}
			cards := make([]BlogCard, 0, len(posts))
			for _, p := range posts {
				cards = append(cards, newBlogCard(p))
			}
			mu.Lock()
			response.LatestPosts = cards
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			testimonials, err := h.repo.ListAll(r.Context(), models.Testimonials)
			if err != nil {
				sectionFailed("testimonials", err)
				return nil
			}
			cards := make([]ProfileCard, 0, len(testimonials))
			for _, t := range testimonials {
				cards = append(cards, newProfileCard(t))
			}
			mu.Lock()
			response.Testimonials = cards
			mu.Unlock()
			return nil
		})
		_ = g.Wait()

		h.responder.WriteJSON(w, response)
	}
}

// getAbout returns the leadership team and the impact stats
// @Summary About page
// @Tags Pages
// @Produce json
// @Success 200 {object} AboutResponse
// @Failure 503 {object} ErrorResponse "Failed to fetch leadership"
// @Router /about [get]
func (h pageHandler) getAbout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leaders, err := h.repo.ListAll(r.Context(), models.Leadership)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		cards := make([]ProfileCard, 0, len(leaders))
		for _, l := range leaders {
			cards = append(cards, newProfileCard(l))
		}
		h.responder.WriteJSON(w, AboutResponse{Stats: counter.ImpactTargets, Leadership: cards})
	}
}

// getTestimonials lists every testimonial
// @Summary Testimonials
// @Tags Pages
// @Produce json
// @Success 200 {array} ProfileCard
// @Router /testimonials [get]
func (h pageHandler) getTestimonials() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		testimonials, err := h.repo.ListAll(r.Context(), models.Testimonials)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		cards := make([]ProfileCard, 0, len(testimonials))
		for _, t := range testimonials {
			cards = append(cards, newProfileCard(t))
		}
		h.responder.WriteJSON(w, cards)
	}
}

// streamImpact streams counter frames as server-sent events. The animation
// starts only if the reported visible ratio reaches the threshold; otherwise
// a single idle frame is sent.
// @Summary Impact counter stream
// @Tags Pages
// @Produce text/event-stream
// @Param visible query number true "Visible ratio of the counter region, 0..1"
// @Router /impact/stream [get]
func (h pageHandler) streamImpact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ratio, err := strconv.ParseFloat(r.URL.Query().Get("visible"), 64)
		if err != nil || ratio < 0 || ratio > 1 {
			h.responder.WriteValidationError(w, "visible", "must be a number between 0 and 1")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			h.responder.WriteError(w, errs.NewInternalError("streaming unsupported"))
			return
		}

		animator := counter.NewAnimator(counter.ImpactTargets)
		animator.Observe(ratio, time.Now())

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		err = animator.Run(r.Context(), h.frameInterval, func(frame counter.Frame) error {
			data, err := json.Marshal(frame)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "event: frame\ndata: %s\n\n", data); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		})
		if err != nil && !errorsIsContext(err) {
			h.logger.Warn().Err(err).Msg("Impact stream ended early")
		}
	}
}

func errorsIsContext(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// errorDetails is the user-facing message of err.
func errorDetails(err error) string {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) && apiErr.Details != "" {
		return apiErr.Details
	}
	return err.Error()
}
