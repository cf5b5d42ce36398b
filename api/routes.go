package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/tonypoem-foundation/site-backend/errs"
)

// setupPublicRoutes registers the routed pages anyone can read
func setupPublicRoutes(r chi.Router, handlers *routeHandlers) {
	r.Get("/", handlers.pageHandler.getHome())
	r.Get("/about", handlers.pageHandler.getAbout())
	r.Get("/impact/stream", handlers.pageHandler.streamImpact())
	r.Get("/testimonials", handlers.pageHandler.getTestimonials())

	r.Get("/blog", handlers.blogHandler.getBlogListing())
	r.Get("/blog/{id}", handlers.blogHandler.getBlogPost())

	r.Get("/programs", handlers.programHandler.getPrograms())

	r.Get("/contact", describeForm(handlers.submissionHandler.responder, contactForm))
	r.Post("/contact", handlers.submissionHandler.submitContact())
	r.Get("/donation", describeForm(handlers.submissionHandler.responder, donationForm))
	r.Post("/donation", handlers.submissionHandler.submitDonation())

	r.Post("/adminlogin", handlers.adminHandler.login())
}

// setupBlobRoutes serves in-process uploads at the path their URLs use
func setupBlobRoutes(r chi.Router, files BlobFiles) {
	if files == nil || files.MountPath() == "" {
		return
	}
	mount := files.MountPath()
	handler := http.StripPrefix(mount+"/", files)
	r.Get(mount+"/*", handler.ServeHTTP)
	r.Head(mount+"/*", handler.ServeHTTP)
}

// setupAdminRoutes registers the routes that need a signed-in admin
func setupAdminRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.authenticate)

		r.Post("/adminlogout", handlers.adminHandler.logout())

		r.Get("/manageContent", handlers.adminHandler.manageContent())
		r.Delete("/manageContent/{collection}/{id}", handlers.adminHandler.deleteContent())

		r.Post("/addPost", handlers.blogHandler.createBlogPost())
		r.Post("/addProgram", handlers.programHandler.createProgram())
		r.Post("/addLeaders", handlers.adminHandler.createLeader())
		r.Post("/addTestimonial", handlers.adminHandler.createTestimonial())
	})
}

// setupFallbackRoutes answers unknown routes and methods with JSON errors
func setupFallbackRoutes(r *chi.Mux) {
	responder := NewResponder(log.With().Str("handlerName", "fallback").Logger())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responder.WriteError(w, errs.NewRouteNotFoundError(req.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responder.WriteError(w, errs.NewMethodNotAllowedError(req.Method, req.URL.Path))
	})
}
