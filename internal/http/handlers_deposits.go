package http

import (
	"net/http"

	"fortis/internal/services"
)

func (s *Server) handleListVaults(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	vaults, err := s.svc.Deposits.Vaults(r.Context(), user)
	if err != nil {
		fail(w, r, err)
		return
	}
	out := make([]vaultJSON, len(vaults))
	for i, v := range vaults {
		out[i] = vaultFromDomain(v)
	}
	NewJSONResponse().Body(map[string][]vaultJSON{"vaults": out}).Write(w)
}

func (s *Server) handleSaveVault(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req vaultJSON
	if err := DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	saved, err := s.svc.Deposits.SaveVault(r.Context(), user, req.toDomain())
	if err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(vaultFromDomain(saved)).Write(w)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req depositRequest
	if err := DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	ids := make([]string, 0, len(req.VaultIDs))
	for _, id := range req.VaultIDs {
		if id = sanitizeInput(id); id != "" {
			ids = append(ids, id)
		}
	}

	var res services.DepositResult
	if req.Preview {
		res, err = s.svc.Deposits.Preview(r.Context(), user, req.Amount, ids)
	} else {
		res, err = s.svc.Deposits.Commit(r.Context(), user, req.Amount, ids)
	}
	if err != nil && res.Allocations == nil {
		fail(w, r, err)
		return
	}
	respond(w, r, depositFromDomain(res, err), err)
}

func (s *Server) handleAutoFill(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	amount, err := ParseAmountParam(r, "amount")
	if err != nil {
		fail(w, r, err)
		return
	}
	suggestion, err := s.svc.Deposits.AutoFill(r.Context(), user, amount)
	if err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Body(autofillJSON{
		Allocations: allocationsFromDomain(suggestion.Allocations),
		Remaining:   suggestion.Remaining,
	}).Write(w)
}
