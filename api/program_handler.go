package api

import (
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tonypoem-foundation/site-backend/content"
	"github.com/tonypoem-foundation/site-backend/listing"
	"github.com/tonypoem-foundation/site-backend/models"
)

type programHandler struct {
	responder Responder
	logger    zerolog.Logger
	repo      *content.Repository
	guard     *content.Guard
}

func newProgramHandler(repo *content.Repository, guard *content.Guard) programHandler {
	logger := log.With().Str("handlerName", "programHandler").Logger()

	return programHandler{
		responder: NewResponder(logger),
		logger:    logger,
		repo:      repo,
		guard:     guard,
	}
}

// getPrograms returns one page of programs, two per page
// @Summary List programs
// @Tags Programs
// @Produce json
// @Param topic query string false "Category facet"
// @Param q query string false "Name search"
// @Param page query int false "Page number"
// @Success 200 {object} ListingResponse[ProgramCard]
// @Failure 503 {object} ErrorResponse "Failed to fetch programs"
// @Router /programs [get]
func (h programHandler) getPrograms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lq, err := parseListingQuery(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		ctrl := listing.NewController(listing.ProgramPageSize)
		ctrl.SetEmptyMessage("No programs available at the moment.")

		view, err := loadView(r.Context(), ctrl, lq, listAll(h.repo, models.Programs))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newListingResponse(view, newProgramCard))
	}
}

// createProgram adds a program with up to six images
// @Summary Create program
// @Tags Admin
// @Accept multipart/form-data,json
// @Produce json
// @Param name formData string true "Program name"
// @Param category formData string false "Category"
// @Param description formData string true "Description"
// @Param images formData file false "Program images"
// @Success 201 {object} CreatedResponse
// @Failure 502 {object} ErrorResponse "Upload failed, nothing was saved"
// @Router /addProgram [post]
func (h programHandler) createProgram() http.HandlerFunc {
	return createRecord(h.responder, h.repo, h.guard, programForm, nil, "Program added successfully!")
}
