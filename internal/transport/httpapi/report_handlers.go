package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/render"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
	"bountyvault/internal/transport/presenter"
	"bountyvault/internal/usecase/bounty"
)

// submitReportRequest carries either a precomputed digest or the report body
// itself, which is hashed and never stored.
type submitReportRequest struct {
	Severity      *domainbounty.Severity `json:"severity"`
	ContentDigest string                 `json:"content_digest"`
	Body          string                 `json:"body"`
}

type decisionRequest struct {
	Reason string `json:"reason"`
}

type payoutRequest struct {
	ResearcherAccount domainbounty.Address `json:"researcher_account"`
}

type mintCredentialRequest struct {
	ProjectLabel string `json:"project_label"`
}

func (req submitReportRequest) digest() (domainbounty.ContentDigest, error) {
	if strings.TrimSpace(req.ContentDigest) != "" {
		return domainbounty.ParseContentDigest(req.ContentDigest)
	}
	if req.Body == "" {
		return domainbounty.ContentDigest{}, fmt.Errorf("%w: content_digest or body is required", domainbounty.ErrInvalidArgument)
	}
	return domainbounty.DigestOf([]byte(req.Body)), nil
}

func (s *Server) submitReport(w http.ResponseWriter, r *http.Request) {
	vault, err := addressParam(r, "vault")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req submitReportRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Severity == nil {
		writeError(w, r, fmt.Errorf("%w: severity is required", domainbounty.ErrInvalidArgument))
		return
	}
	digest, err := req.digest()
	if err != nil {
		writeError(w, r, err)
		return
	}

	report, err := s.svc.SubmitReport(r.Context(), bounty.SubmitReportInput{
		Caller:   callerFrom(r),
		Vault:    vault,
		Severity: *req.Severity,
		Digest:   digest,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, presenter.NewReport(report))
}

func (s *Server) approveReport(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, s.svc.ApproveReport)
}

func (s *Server) rejectReport(w http.ResponseWriter, r *http.Request) {
	s.decide(w, r, s.svc.RejectReport)
}

func (s *Server) decide(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, input bounty.DecideReportInput) (ports.ReportRecord, error)) {
	vault, err := addressParam(r, "vault")
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := addressParam(r, "report")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req decisionRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	record, err := apply(r.Context(), bounty.DecideReportInput{
		Caller: callerFrom(r),
		Vault:  vault,
		Report: report,
		Reason: req.Reason,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewReport(record))
}

func (s *Server) executePayout(w http.ResponseWriter, r *http.Request) {
	vault, err := addressParam(r, "vault")
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := addressParam(r, "report")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req payoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := s.svc.ExecutePayout(r.Context(), bounty.ExecutePayoutInput{
		Caller:            callerFrom(r),
		Vault:             vault,
		Report:            report,
		ResearcherAccount: req.ResearcherAccount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewPayout(result))
}

func (s *Server) mintCredential(w http.ResponseWriter, r *http.Request) {
	report, err := addressParam(r, "report")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req mintCredentialRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	credential, err := s.svc.MintCredential(r.Context(), bounty.MintCredentialInput{
		Caller:       callerFrom(r),
		Report:       report,
		ProjectLabel: req.ProjectLabel,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, presenter.NewCredential(credential))
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r, "report")
	if err != nil {
		writeError(w, r, err)
		return
	}
	detail, err := s.svc.GetReport(r.Context(), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewReportDetail(detail))
}

func (s *Server) getReportStatus(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r, "report")
	if err != nil {
		writeError(w, r, err)
		return
	}
	status, err := s.svc.ReportStatus(r.Context(), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, render.M{"report": address.String(), "status": string(status)})
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	vault, err := optionalAddressQuery(r, "vault")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter := ports.ReportFilter{
		Vault:      vault,
		Researcher: strings.TrimSpace(r.URL.Query().Get("researcher")),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		if filter.Status, err = domainbounty.ParseReportStatus(raw); err != nil {
			writeError(w, r, err)
			return
		}
	}

	reports, err := s.svc.ListReports(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewReports(reports))
}

func (s *Server) getCredential(w http.ResponseWriter, r *http.Request) {
	address, err := addressParam(r, "credential")
	if err != nil {
		writeError(w, r, err)
		return
	}
	credential, err := s.svc.GetCredential(r.Context(), address)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewCredential(credential))
}

func (s *Server) listCredentials(w http.ResponseWriter, r *http.Request) {
	credentials, err := s.svc.ListCredentials(r.Context(), r.URL.Query().Get("researcher"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewCredentials(credentials))
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	vault, err := optionalAddressQuery(r, "vault")
	if err != nil {
		writeError(w, r, err)
		return
	}
	report, err := optionalAddressQuery(r, "report")
	if err != nil {
		writeError(w, r, err)
		return
	}
	filter := ports.LedgerEventFilter{Vault: vault, Report: report}
	if raw := r.URL.Query().Get("after"); raw != "" {
		if filter.AfterID, err = strconv.ParseUint(raw, 10, 64); err != nil {
			writeError(w, r, fmt.Errorf("%w: after %q", domainbounty.ErrInvalidArgument, raw))
			return
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if filter.Limit, err = strconv.Atoi(raw); err != nil {
			writeError(w, r, fmt.Errorf("%w: limit %q", domainbounty.ErrInvalidArgument, raw))
			return
		}
	}

	events, err := s.svc.ListEvents(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, presenter.NewEvents(events))
}
