package api

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts every API route under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/me", h.GetMe)
		r.Post("/sessions/login", h.Login)
		r.Post("/sessions/logout", h.Logout)

		r.Route("/journal", func(r chi.Router) {
			r.Get("/", h.ListJournal)
			r.Post("/", h.AddJournal)
			r.Delete("/", h.ClearJournal)
			r.Post("/pull", h.PullJournal)
			r.Patch("/{id}", h.TagJournal)
			r.Delete("/{id}", h.RemoveJournal)
		})

		r.Route("/moods", func(r chi.Router) {
			r.Get("/", h.ListMoods)
			r.Post("/", h.AddMood)
			r.Delete("/", h.ClearMoods)
		})

		r.Route("/chat", func(r chi.Router) {
			r.Get("/", h.GetChat)
			r.Put("/", h.SetChat)
			r.Post("/", h.SendChat)
			r.Delete("/", h.ClearChat)
			r.Post("/archive", h.ArchiveChat)
		})

		r.Route("/onboarding", func(r chi.Router) {
			r.Get("/", h.GetOnboarding)
			r.Patch("/", h.UpdateOnboarding)
			r.Post("/step", h.SetStep)
			r.Post("/next", h.NextStep)
			r.Post("/back", h.PrevStep)
			r.Post("/complete", h.CompleteOnboarding)
			r.Post("/reset", h.ResetOnboarding)
		})

		r.Route("/plan", func(r chi.Router) {
			r.Get("/", h.GetPlan)
			r.Post("/toggle", h.ToggleActivity)
			r.Post("/focus", h.SetFocus)
			r.Put("/reminder", h.SetReminder)
			r.Post("/goals", h.AddGoal)
			r.Delete("/goals", h.ClearGoals)
			r.Delete("/goals/{id}", h.RemoveGoal)
			r.Post("/goals/{id}/toggle", h.ToggleGoal)
		})

		r.Get("/insights/{journalID}", h.ListInsights)
		r.Post("/insights", h.PublishInsight)

		r.Get("/export", h.Export)
		r.Get("/events", h.HandleEvents)
	})
}
