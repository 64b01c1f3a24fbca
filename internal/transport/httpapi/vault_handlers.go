package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
	"bountyvault/internal/transport/presenter"
	"bountyvault/internal/usecase/bounty"
)

type createVaultRequest struct {
	Team           string                `json:"team"`
	Governance     string                `json:"governance"`
	Schedule       presenter.Schedule    `json:"schedule"`
	InitialFunding uint64                `json:"initial_funding,string"`
	CustodyAccount domainbounty.Address  `json:"custody_account"`
	TokenID        string                `json:"token_id"`
	FunderAccount  *domainbounty.Address `json:"funder_account"`
}

type fundVaultRequest struct {
	Amount        uint64               `json:"amount,string"`
	FunderAccount domainbounty.Address `json:"funder_account"`
}

type updateScheduleRequest struct {
	Schedule presenter.Schedule `json:"schedule"`
}

func (s *Server) createVault(w http.ResponseWriter, r *http.Request) {
	var req createVaultRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	caller := callerFrom(r)
	team := req.Team
	if strings.TrimSpace(team) == "" {
		team = caller
	}

	vault, err := s.svc.CreateVault(r.Context(), bounty.CreateVaultInput{
		Caller:         caller,
		Team:           team,
		Governance:     req.Governance,
		Schedule:       req.Schedule.RewardSchedule(),
		InitialFunding: req.InitialFunding,
		CustodyAccount: req.CustodyAccount,
		TokenID:        req.TokenID,
		FunderAccount:  req.FunderAccount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, presenter.NewVault(vault))
}

func (s *Server) fundVault(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r, "vault")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req fundVaultRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	vault, err := s.svc.FundVault(r.Context(), bounty.FundVaultInput{
		Caller:        callerFrom(r),
		Vault:         address,
		Amount:        req.Amount,
		FunderAccount: req.FunderAccount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewVault(vault))
}

func (s *Server) toggleVault(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r, "vault")
	if err != nil {
		writeError(w, r, err)
		return
	}

	vault, err := s.svc.ToggleActive(r.Context(), bounty.ToggleActiveInput{
		Caller: callerFrom(r),
		Vault:  address,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewVault(vault))
}

func (s *Server) updateSchedule(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r, "vault")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req updateScheduleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	vault, err := s.svc.UpdateRewardSchedule(r.Context(), bounty.UpdateScheduleInput{
		Caller:   callerFrom(r),
		Vault:    address,
		Schedule: req.Schedule.RewardSchedule(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewVault(vault))
}

func (s *Server) getVault(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r, "vault")
	if err != nil {
		writeError(w, r, err)
		return
	}
	vault, err := s.svc.GetVault(r.Context(), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewVault(vault))
}

func (s *Server) listVaults(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))
	vaults, err := s.svc.ListVaults(r.Context(), ports.VaultFilter{
		Team:       strings.TrimSpace(r.URL.Query().Get("team")),
		ActiveOnly: activeOnly,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewVaults(vaults))
}

func (s *Server) auditSolvency(w http.ResponseWriter, r *http.Request) {
	results, err := s.svc.AuditSolvency(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewSolvency(results))
}
