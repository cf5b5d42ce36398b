package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tonypoem-foundation/site-backend/auth"
	"github.com/tonypoem-foundation/site-backend/content"
	"github.com/tonypoem-foundation/site-backend/errs"
	"github.com/tonypoem-foundation/site-backend/listing"
	"github.com/tonypoem-foundation/site-backend/models"
)

type adminHandler struct {
	responder    Responder
	logger       zerolog.Logger
	repo         *content.Repository
	guard        *content.Guard
	sessions     *auth.Sessions
	secureCookie bool
}

func newAdminHandler(repo *content.Repository, guard *content.Guard, sessions *auth.Sessions, secureCookie bool) adminHandler {
	logger := log.With().Str("handlerName", "adminHandler").Logger()

	return adminHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		repo:         repo,
		guard:        guard,
		sessions:     sessions,
		secureCookie: secureCookie,
	}
}

// login signs an admin in
// @Summary Admin login
// @Tags Admin
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Email and password"
// @Success 200 {object} LoginResponse
// @Failure 401 {object} ErrorResponse "Login failed. Please check your credentials."
// @Router /adminlogin [post]
func (h adminHandler) login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
			if err := r.ParseForm(); err != nil {
				h.responder.WriteError(w, errs.NewMalformedPayloadError("login", err))
				return
			}
			req = LoginRequest{Email: r.PostForm.Get("email"), Password: r.PostForm.Get("password")}
		} else if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			h.responder.WriteError(w, errs.NewInvalidJSONError(err))
			return
		}

		release, err := h.guard.Acquire("login:" + strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer release()

		session, err := h.sessions.SignIn(r.Context(), req.Email, req.Password)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    session.Token,
			Path:     "/",
			Expires:  session.ExpiresAt,
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
		h.responder.WriteJSON(w, LoginResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
			Identity:  session.Identity,
			Redirect:  "/manageContent",
		})
	}
}

// logout revokes the current session
// @Summary Admin logout
// @Tags Admin
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} ErrorResponse
// @Router /adminlogout [post]
func (h adminHandler) logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.sessions.SignOut(tokenFromRequest(r)); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.secureCookie,
			SameSite: http.SameSiteLaxMode,
		})
		h.responder.WriteJSON(w, map[string]string{
			"status":   "success",
			"message":  "Signed out",
			"redirect": "/adminlogin",
		})
	}
}

// manageContent lists the managed collections, ten records per page
// @Summary Admin dashboard
// @Tags Admin
// @Produce json
// @Param collection query string false "Only this collection"
// @Param q query string false "Title search"
// @Param page query int false "Page number"
// @Success 200 {object} ManageContentResponse
// @Failure 401 {object} ErrorResponse "redirect to /adminlogin"
// @Router /manageContent [get]
func (h adminHandler) manageContent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, _ := ctxGetSession(r.Context())

		lq, err := parseListingQuery(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		collections := models.ManagedCollections
		if name := r.URL.Query().Get("collection"); name != "" {
			collection, ok := lookupManaged(name)
			if !ok {
				h.responder.WriteError(w, errs.NewInvalidFieldError("collection", "unknown collection "+name))
				return
			}
			collections = []models.Collection{collection}
		}

		listings := make([]CollectionListing, len(collections))
		var g errgroup.Group
		for i, collection := range collections {
			g.Go(func() error {
				ctrl := listing.NewController(listing.DashboardPageSize)
				ctrl.SetEmptyMessage("No " + collection.Name + " yet.")

				entry := CollectionListing{Name: collection.Name, Entity: collection.Entity}
				view, err := loadView(r.Context(), ctrl, lq, listAll(h.repo, collection))
				if err != nil {
					h.logger.Warn().Err(err).Str("collection", collection.Name).Msg("Dashboard listing failed")
					entry.Error = errorDetails(err)
					view = listing.NewController(listing.DashboardPageSize).View()
					view.Status = listing.Failed
				}
				entry.Listing = newListingResponse(view, identity)
				listings[i] = entry
				return nil
			})
		}
		_ = g.Wait()

		h.responder.WriteJSON(w, ManageContentResponse{Admin: session.Identity, Collections: listings})
	}
}

// deleteContent removes a record and its images
// @Summary Delete record
// @Tags Admin
// @Produce json
// @Param collection path string true "Collection"
// @Param id path string true "Record ID"
// @Success 200 {object} content.RemoveResult
// @Failure 409 {object} ErrorResponse "Conflict - delete already in progress"
// @Failure 502 {object} ErrorResponse "Failed to delete"
// @Router /manageContent/{collection}/{id} [delete]
func (h adminHandler) deleteContent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collection, ok := lookupManaged(chi.URLParam(r, "collection"))
		if !ok {
			h.responder.WriteError(w, errs.NewNotFoundError("unknown collection"))
			return
		}
		id := chi.URLParam(r, "id")

		release, err := h.guard.Acquire("delete:" + collection.Name + "/" + id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		defer release()

		result, err := h.repo.Remove(r.Context(), collection, id)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if session, ok := ctxGetSession(r.Context()); ok {
			h.logger.Info().Str("admin", session.Identity.Email).Str("collection", collection.Name).Str("id", id).Bool("removed", result.Removed).Msg("Admin deleted record")
		}
		h.responder.WriteJSON(w, result)
	}
}

// createLeader adds a leadership profile
// @Summary Create leadership profile
// @Tags Admin
// @Accept multipart/form-data,json
// @Param name formData string true "Name"
// @Param role formData string true "Role"
// @Param image formData file false "Portrait"
// @Success 201 {object} CreatedResponse
// @Router /addLeaders [post]
func (h adminHandler) createLeader() http.HandlerFunc {
	return createRecord(h.responder, h.repo, h.guard, leaderForm, nil, "Leader added successfully!")
}

// createTestimonial adds a testimonial
// @Summary Create testimonial
// @Tags Admin
// @Accept multipart/form-data,json
// @Param name formData string true "Name"
// @Param review formData string true "Review"
// @Param image formData file false "Photo"
// @Success 201 {object} CreatedResponse
// @Router /addTestimonial [post]
func (h adminHandler) createTestimonial() http.HandlerFunc {
	return createRecord(h.responder, h.repo, h.guard, testimonialForm, nil, "Testimonial added successfully!")
}

func lookupManaged(name string) (models.Collection, bool) {
	for _, c := range models.ManagedCollections {
		if c.Name == name {
			return c, true
		}
	}
	return models.Collection{}, false
}
