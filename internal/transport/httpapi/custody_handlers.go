package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/transport/presenter"
)

type openCustodyRequest struct {
	TokenID string `json:"token_id"`
	// VaultTeam opens the custody account for the team's vault instead of
	// for the caller. Only the team itself may do so.
	VaultTeam string `json:"vault_team"`
}

type mintCustodyRequest struct {
	Amount uint64 `json:"amount,string"`
}

func (s *Server) openCustodyAccount(w http.ResponseWriter, r *http.Request) {
	var req openCustodyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	caller := callerFrom(r)

	if req.VaultTeam != "" {
		if err := domainbounty.AuthorizeTeam(caller, req.VaultTeam); err != nil {
			writeError(w, r, err)
			return
		}
		account, err := s.svc.OpenVaultCustodyAccount(r.Context(), req.VaultTeam, req.TokenID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusCreated, presenter.NewCustodyAccount(account))
		return
	}

	account, err := s.svc.OpenCustodyAccount(r.Context(), caller, req.TokenID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, presenter.NewCustodyAccount(account))
}

func (s *Server) mintCustody(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r, "account")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req mintCustodyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	account, err := s.svc.MintCustody(r.Context(), callerFrom(r), address, req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewCustodyAccount(account))
}

func (s *Server) getCustodyAccount(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r, "account")
	if err != nil {
		writeError(w, r, err)
		return
	}
	account, err := s.svc.GetCustodyAccount(r.Context(), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewCustodyAccount(account))
}

func (s *Server) listCustodyTransfers(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r, "account")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			writeError(w, r, fmt.Errorf("%w: limit %q", domainbounty.ErrInvalidArgument, raw))
			return
		}
	}
	transfers, err := s.svc.ListCustodyTransfers(r.Context(), address, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewTransfers(transfers))
}
