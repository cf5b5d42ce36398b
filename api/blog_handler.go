package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tonypoem-foundation/site-backend/content"
	"github.com/tonypoem-foundation/site-backend/errs"
	"github.com/tonypoem-foundation/site-backend/listing"
	"github.com/tonypoem-foundation/site-backend/models"
)

type blogHandler struct {
	responder Responder
	logger    zerolog.Logger
	repo      *content.Repository
	guard     *content.Guard
}

func newBlogHandler(repo *content.Repository, guard *content.Guard) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder: NewResponder(logger),
		logger:    logger,
		repo:      repo,
		guard:     guard,
	}
}

// getBlogListing returns one page of blog posts
// @Summary List blog posts
// @Description Filters posts by topic, year and title search, three per page
// @Tags Blog
// @Produce json
// @Param topic query string false "Topic facet, default All"
// @Param year query string false "Year facet, default All"
// @Param q query string false "Case-insensitive title search"
// @Param page query int false "Page number, clamped to the valid range"
// @Success 200 {object} ListingResponse[BlogCard]
// @Failure 503 {object} ErrorResponse "Failed to fetch blogs"
// @Router /blog [get]
func (h blogHandler) getBlogListing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lq, err := parseListingQuery(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		ctrl := listing.NewController(listing.BlogPageSize)
		ctrl.SetEmptyMessage("No posts found matching your criteria.")

		view, err := loadView(r.Context(), ctrl, lq, listAll(h.repo, models.Blogs))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newListingResponse(view, newBlogCard))
	}
}

// getBlogPost returns one post and up to three related posts
// @Summary Get blog post
// @Tags Blog
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} BlogPostResponse
// @Failure 404 {object} ErrorResponse "Not Found - redirect to /blog"
// @Router /blog/{id} [get]
func (h blogHandler) getBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		if id == "" {
			h.responder.WriteError(w, errs.NewRecordNotFoundError(models.Blogs.Entity, models.Blogs.Listing))
			return
		}

		post, err := h.repo.Get(r.Context(), models.Blogs, id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		related, err := h.repo.Related(r.Context(), models.Blogs, post, content.RelatedLimit)
		if err != nil {
			// The post itself loaded; the related strip is optional.
			h.logger.Warn().Err(err).Str("id", id).Msg("Failed to load related posts")
			related = nil
		}

		cards := make([]BlogCard, 0, len(related))
		for _, rec := range related {
			cards = append(cards, newBlogCard(rec))
		}

		h.responder.WriteJSON(w, BlogPostResponse{
			Post:          post,
			Title:         post.DisplayTitle(),
			Topic:         post.TopicOrDefault(),
			FormattedDate: post.FormattedDate(),
			Related:       cards,
		})
	}
}

// createBlogPost adds a post with an optional cover image
// @Summary Create blog post
// @Tags Admin
// @Accept multipart/form-data,json
// @Produce json
// @Param title formData string true "Title"
// @Param topic formData string false "Topic"
// @Param date formData string false "Publication date, ISO-8601, defaults to now"
// @Param content formData string true "HTML content"
// @Param image formData file false "Cover image"
// @Success 201 {object} CreatedResponse
// @Failure 400 {object} ErrorResponse "Bad Request - missing field"
// @Failure 409 {object} ErrorResponse "Conflict - same post already being saved"
// @Failure 502 {object} ErrorResponse "Upload or write failed"
// @Router /addPost [post]
func (h blogHandler) createBlogPost() http.HandlerFunc {
	return createRecord(h.responder, h.repo, h.guard, postForm, stampPublished, "Post published successfully!")
}

// stampPublished dates a post that was submitted without one.
func stampPublished(rec *models.Record) {
	if rec.Date == nil || strings.TrimSpace(*rec.Date) == "" {
		now := time.Now().UTC().Format(time.RFC3339)
		rec.Date = &now
	}
}

func listAll(repo *content.Repository, collection models.Collection) listing.FetchFunc {
	return func(ctx context.Context) ([]models.Record, error) {
		return repo.ListAll(ctx, collection)
	}
}
