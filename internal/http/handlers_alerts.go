package http

import (
	"net/http"
)

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	feed, err := s.svc.Alerts.Feed(r.Context(), user, SessionID(r))
	if err != nil && feed.Items == nil {
		fail(w, r, err)
		return
	}
	respond(w, r, feedFromDomain(feed.Feed, feed.Durable, err), err)
}

func (s *Server) handleMarkSeen(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	session := SessionID(r)
	if session == "" {
		fail(w, r, badRequest("missing %s header", SessionHeader))
		return
	}
	if err := s.svc.Alerts.MarkSeen(r.Context(), user, session); err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleDismissAlert(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	settings, err := s.svc.Alerts.Dismiss(r.Context(), user, sanitizeInput(r.PathValue("id")))
	if err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Body(settingsFromDomain(settings)).Write(w)
}

func (s *Server) handleDismissAll(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	settings, err := s.svc.Alerts.DismissAll(r.Context(), user)
	if err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Body(settingsFromDomain(settings)).Write(w)
}

func (s *Server) handleClearDismissed(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	settings, err := s.svc.Alerts.ClearDismissed(r.Context(), user)
	if err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Body(settingsFromDomain(settings)).Write(w)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	settings, err := s.svc.Alerts.Settings(r.Context(), user)
	if err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Body(settingsFromDomain(settings)).Write(w)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req settingsJSON
	if err := DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	saved, err := s.svc.Alerts.UpdateSettings(r.Context(), user, req.toDomain())
	if err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Body(settingsFromDomain(saved)).Write(w)
}
