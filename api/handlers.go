package api

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, settings routerSettings) *routeHandlers {
	return &routeHandlers{
		pageHandler:       newPageHandler(deps.Repository, settings.frameInterval),
		blogHandler:       newBlogHandler(deps.Repository, deps.Guard),
		programHandler:    newProgramHandler(deps.Repository, deps.Guard),
		submissionHandler: newSubmissionHandler(deps.Repository, deps.Guard, deps.Notifier),
		adminHandler:      newAdminHandler(deps.Repository, deps.Guard, deps.Sessions, settings.secureCookies),
	}
}
