package http

import (
	"context"
	"net/http"

	"fortis/internal/archive"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	listing, err := s.svc.Transactions.List(r.Context(), user)
	if err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Body(listingJSON{
		Active:          transactionsFromDomain(listing.Active),
		ArchiveEligible: transactionsFromDomain(listing.Eligible),
		Archived:        transactionsFromDomain(listing.Archived),
	}).Write(w)
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req transactionRequest
	if err := DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	tx, err := req.toDomain()
	if err != nil {
		fail(w, r, err)
		return
	}
	saved, err := s.svc.Transactions.Add(r.Context(), user, tx)
	if err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(transactionFromDomain(saved)).Write(w)
}

func (s *Server) handleArchiveEligible(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	eligible, err := s.svc.Archive.Eligible(r.Context(), user)
	if err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string][]transactionJSON{"transactions": transactionsFromDomain(eligible)}).Write(w)
}

func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	s.bulk(w, r, s.svc.Archive.Archive)
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	s.bulk(w, r, s.svc.Archive.Restore)
}

func (s *Server) handleArchiveAllEligible(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	res, err := s.svc.Archive.ArchiveEligible(r.Context(), user)
	respond(w, r, bulkFromDomain(res, err), err)
}

func (s *Server) handlePurgeArchived(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	res, err := s.svc.Archive.Purge(r.Context(), user)
	respond(w, r, bulkFromDomain(res, err), err)
}

func (s *Server) bulk(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, userID string, ids []string) (archive.BulkResult, error)) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req idsRequest
	if err := DecodeJSON(r, &req); err != nil {
		fail(w, r, err)
		return
	}
	ids := make([]string, len(req.IDs))
	for i, id := range req.IDs {
		ids[i] = sanitizeInput(id)
	}
	res, err := apply(r.Context(), user, ids)
	respond(w, r, bulkFromDomain(res, err), err)
}

func (s *Server) handleWeeklyReport(w http.ResponseWriter, r *http.Request) {
	user, err := userID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	report, err := s.svc.Reports.Weekly(r.Context(), user)
	if err != nil {
		fail(w, r, err)
		return
	}
	NewJSONResponse().Body(weeklyFromDomain(report)).Write(w)
}
