// Package presenter renders ledger records for the CLI and the HTTP API.
// Amounts are encoded as decimal strings in JSON so clients never round them.
package presenter

import (
	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
	"bountyvault/internal/usecase/bounty"
)

type Schedule struct {
	Critical uint64 `json:"critical,string" yaml:"critical"`
	High     uint64 `json:"high,string" yaml:"high"`
	Medium   uint64 `json:"medium,string" yaml:"medium"`
	Low      uint64 `json:"low,string" yaml:"low"`
}

type Vault struct {
	Address         string   `json:"address" yaml:"address"`
	Team            string   `json:"team" yaml:"team"`
	Governance      string   `json:"governance" yaml:"governance"`
	CustodyAccount  string   `json:"custody_account" yaml:"custody_account"`
	TokenID         string   `json:"token_id,omitempty" yaml:"token_id,omitempty"`
	Schedule        Schedule `json:"schedule" yaml:"schedule"`
	TotalFunded     uint64   `json:"total_funded,string" yaml:"total_funded"`
	TotalPaidOut    uint64   `json:"total_paid_out,string" yaml:"total_paid_out"`
	TotalReports    uint64   `json:"total_reports,string" yaml:"total_reports"`
	ApprovedReports uint64   `json:"approved_reports,string" yaml:"approved_reports"`
	Active          bool     `json:"active" yaml:"active"`
	CreatedAt       string   `json:"created_at" yaml:"created_at"`
	UpdatedAt       string   `json:"updated_at" yaml:"updated_at"`
}

type Report struct {
	Address       string  `json:"address" yaml:"address"`
	Vault         string  `json:"vault" yaml:"vault"`
	Researcher    string  `json:"researcher" yaml:"researcher"`
	ReportIndex   uint64  `json:"report_index,string" yaml:"report_index"`
	Severity      string  `json:"severity" yaml:"severity"`
	Status        string  `json:"status" yaml:"status"`
	ContentDigest string  `json:"content_digest" yaml:"content_digest"`
	PayoutAmount  uint64  `json:"payout_amount,string" yaml:"payout_amount"`
	Approver      *string `json:"approver,omitempty" yaml:"approver,omitempty"`
	Reason        *string `json:"reason,omitempty" yaml:"reason,omitempty"`
	SubmittedAt   string  `json:"submitted_at" yaml:"submitted_at"`
	ApprovedAt    *string `json:"approved_at,omitempty" yaml:"approved_at,omitempty"`
	RejectedAt    *string `json:"rejected_at,omitempty" yaml:"rejected_at,omitempty"`
	PaidAt        *string `json:"paid_at,omitempty" yaml:"paid_at,omitempty"`
}

type ReportDetail struct {
	Report Report  `json:"report" yaml:"report"`
	Events []Event `json:"events" yaml:"events"`
}

type Credential struct {
	Address      string `json:"address" yaml:"address"`
	Researcher   string `json:"researcher" yaml:"researcher"`
	Vault        string `json:"vault" yaml:"vault"`
	Report       string `json:"report" yaml:"report"`
	Severity     string `json:"severity" yaml:"severity"`
	ProjectLabel string `json:"project_label" yaml:"project_label"`
	MintedAt     string `json:"minted_at" yaml:"minted_at"`
}

type Event struct {
	EventID   uint64 `json:"event_id" yaml:"event_id"`
	EventUID  string `json:"event_uid" yaml:"event_uid"`
	Kind      string `json:"kind" yaml:"kind"`
	Vault     string `json:"vault" yaml:"vault"`
	Report    string `json:"report,omitempty" yaml:"report,omitempty"`
	Actor     string `json:"actor" yaml:"actor"`
	Amount    uint64 `json:"amount,string" yaml:"amount"`
	Detail    string `json:"detail,omitempty" yaml:"detail,omitempty"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

type CustodyAccount struct {
	Address    string `json:"address" yaml:"address"`
	Holder     string `json:"holder" yaml:"holder"`
	HolderKind string `json:"holder_kind" yaml:"holder_kind"`
	TokenID    string `json:"token_id,omitempty" yaml:"token_id,omitempty"`
	Balance    uint64 `json:"balance,string" yaml:"balance"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
	UpdatedAt  string `json:"updated_at" yaml:"updated_at"`
}

type Transfer struct {
	TransferID string `json:"transfer_id" yaml:"transfer_id"`
	From       string `json:"from,omitempty" yaml:"from,omitempty"`
	To         string `json:"to" yaml:"to"`
	Authority  string `json:"authority" yaml:"authority"`
	Amount     uint64 `json:"amount,string" yaml:"amount"`
	CreatedAt  string `json:"created_at" yaml:"created_at"`
}

type Payout struct {
	Report   Report    `json:"report" yaml:"report"`
	Transfer *Transfer `json:"transfer,omitempty" yaml:"transfer,omitempty"`
}

type Solvency struct {
	Vault          string `json:"vault" yaml:"vault"`
	Team           string `json:"team" yaml:"team"`
	TotalFunded    uint64 `json:"total_funded,string" yaml:"total_funded"`
	TotalPaidOut   uint64 `json:"total_paid_out,string" yaml:"total_paid_out"`
	Outstanding    uint64 `json:"outstanding,string" yaml:"outstanding"`
	CustodyBalance uint64 `json:"custody_balance,string" yaml:"custody_balance"`
	Healthy        bool   `json:"healthy" yaml:"healthy"`
	Problem        string `json:"problem,omitempty" yaml:"problem,omitempty"`
}

func NewSchedule(schedule domainbounty.RewardSchedule) Schedule {
	return Schedule{
		Critical: schedule[domainbounty.SeverityCritical],
		High:     schedule[domainbounty.SeverityHigh],
		Medium:   schedule[domainbounty.SeverityMedium],
		Low:      schedule[domainbounty.SeverityLow],
	}
}

func (s Schedule) RewardSchedule() domainbounty.RewardSchedule {
	return domainbounty.NewRewardSchedule(s.Critical, s.High, s.Medium, s.Low)
}

func NewVault(v ports.VaultRecord) Vault {
	return Vault{
		Address:         v.Address.String(),
		Team:            v.Team,
		Governance:      v.Governance,
		CustodyAccount:  v.CustodyAccount.String(),
		TokenID:         v.TokenID,
		Schedule:        NewSchedule(v.Schedule),
		TotalFunded:     v.TotalFunded,
		TotalPaidOut:    v.TotalPaidOut,
		TotalReports:    v.TotalReports,
		ApprovedReports: v.ApprovedReports,
		Active:          v.Active,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func NewVaults(items []ports.VaultRecord) []Vault {
	out := make([]Vault, 0, len(items))
	for _, item := range items {
		out = append(out, NewVault(item))
	}
	return out
}

func NewReport(r ports.ReportRecord) Report {
	return Report{
		Address:       r.Address.String(),
		Vault:         r.Vault.String(),
		Researcher:    r.Researcher,
		ReportIndex:   r.ReportIndex,
		Severity:      r.Severity.String(),
		Status:        string(r.Status),
		ContentDigest: r.ContentDigest.String(),
		PayoutAmount:  r.PayoutAmount,
		Approver:      r.Approver,
		Reason:        r.Reason,
		SubmittedAt:   r.SubmittedAt,
		ApprovedAt:    r.ApprovedAt,
		RejectedAt:    r.RejectedAt,
		PaidAt:        r.PaidAt,
	}
}

func NewReports(items []ports.ReportRecord) []Report {
	out := make([]Report, 0, len(items))
	for _, item := range items {
		out = append(out, NewReport(item))
	}
	return out
}

func NewReportDetail(detail bounty.ReportDetail) ReportDetail {
	return ReportDetail{
		Report: NewReport(detail.Report),
		Events: NewEvents(detail.Events),
	}
}

func NewCredential(c ports.CredentialRecord) Credential {
	return Credential{
		Address:      c.Address.String(),
		Researcher:   c.Researcher,
		Vault:        c.Vault.String(),
		Report:       c.Report.String(),
		Severity:     c.Severity.String(),
		ProjectLabel: c.ProjectLabel,
		MintedAt:     c.MintedAt,
	}
}

func NewCredentials(items []ports.CredentialRecord) []Credential {
	out := make([]Credential, 0, len(items))
	for _, item := range items {
		out = append(out, NewCredential(item))
	}
	return out
}

func NewEvent(e ports.LedgerEvent) Event {
	out := Event{
		EventID:   e.EventID,
		EventUID:  e.EventUID,
		Kind:      e.Kind,
		Vault:     e.Vault.String(),
		Actor:     e.Actor,
		Amount:    e.Amount,
		Detail:    e.Detail,
		CreatedAt: e.CreatedAt,
	}
	if e.Report != nil {
		out.Report = e.Report.String()
	}
	return out
}

func NewEvents(items []ports.LedgerEvent) []Event {
	out := make([]Event, 0, len(items))
	for _, item := range items {
		out = append(out, NewEvent(item))
	}
	return out
}

func NewCustodyAccount(a ports.CustodyAccount) CustodyAccount {
	return CustodyAccount{
		Address:    a.Address.String(),
		Holder:     a.Holder,
		HolderKind: string(a.HolderKind),
		TokenID:    a.TokenID,
		Balance:    a.Balance,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}
}

func NewTransfer(t ports.CustodyTransfer) Transfer {
	out := Transfer{
		TransferID: t.TransferID,
		To:         t.To.String(),
		Authority:  t.Authority,
		Amount:     t.Amount,
		CreatedAt:  t.CreatedAt,
	}
	if !t.From.IsZero() {
		out.From = t.From.String()
	}
	return out
}

func NewTransfers(items []ports.CustodyTransfer) []Transfer {
	out := make([]Transfer, 0, len(items))
	for _, item := range items {
		out = append(out, NewTransfer(item))
	}
	return out
}

// NewPayout omits the transfer for zero-amount payouts, which move nothing.
func NewPayout(result bounty.PayoutResult) Payout {
	out := Payout{Report: NewReport(result.Report)}
	if result.Transfer.TransferID != "" {
		transfer := NewTransfer(result.Transfer)
		out.Transfer = &transfer
	}
	return out
}

func NewSolvency(items []bounty.VaultSolvency) []Solvency {
	out := make([]Solvency, 0, len(items))
	for _, item := range items {
		out = append(out, Solvency{
			Vault:          item.Vault.String(),
			Team:           item.Team,
			TotalFunded:    item.TotalFunded,
			TotalPaidOut:   item.TotalPaidOut,
			Outstanding:    item.Outstanding,
			CustodyBalance: item.CustodyBalance,
			Healthy:        item.Healthy,
			Problem:        item.Problem,
		})
	}
	return out
}
