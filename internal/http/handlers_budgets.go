package http

import (
	"net/http"

	"fortis/internal/core"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	view, err := s.svc.Budgets.View(r.Context(), user, ParsePolicy(r))
	if err != nil && view.Budgets == nil {
		fail(w, r, err)
		return
	}
	respond(w, r, budgetViewFromDomain(view, err), err)
}

func (s *Server) handleReplaceBudgets(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req budgetListRequest
	if err := DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}

	budgets := make([]core.Budget, len(req.Budgets))
	for i, b := range req.Budgets {
		budgets[i] = b.toDomain()
	}
	saved, err := s.svc.Budgets.Replace(r.Context(), user, budgets)
	if err != nil {
		fail(w, r, err)
		return
	}

	out := make([]budgetJSON, len(saved))
	for i, b := range saved {
		out[i] = budgetFromDomain(b)
	}
	NewJSONResponse().Body(budgetListRequest{Budgets: out}).Write(w)
}

func (s *Server) handleAddBudget(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req budgetJSON
	if err := DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	saved, err := s.svc.Budgets.Add(r.Context(), user, req.toDomain())
	if err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(budgetFromDomain(saved)).Write(w)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req budgetJSON
	if err := DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	b := req.toDomain()
	b.ID = sanitizeInput(r.PathValue("id"))

	saved, err := s.svc.Budgets.Update(r.Context(), user, b)
	if err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Body(budgetFromDomain(saved)).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := s.svc.Budgets.Delete(r.Context(), user, sanitizeInput(r.PathValue("id"))); err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleResetBudgets(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	res, err := s.svc.Budgets.ResetStale(r.Context(), user)
	if err != nil && res.Budgets == nil {
		fail(w, r, err)
		return
	}
	respond(w, r, resetFromDomain(res, err), err)
}
