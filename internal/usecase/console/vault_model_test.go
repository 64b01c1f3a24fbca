package console

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
	"bountyvault/internal/usecase/bounty"
)

type fakeLedger struct {
	vaults    []ports.VaultRecord
	reports   []ports.ReportRecord
	decisions []bounty.DecideReportInput
	toggles   []bounty.ToggleActiveInput
	lastQuery ports.ReportFilter
}

func (f *fakeLedger) ListVaults(_ context.Context, _ ports.VaultFilter) ([]ports.VaultRecord, error) {
	return f.vaults, nil
}

func (f *fakeLedger) ListReports(_ context.Context, filter ports.ReportFilter) ([]ports.ReportRecord, error) {
	f.lastQuery = filter
	var out []ports.ReportRecord
	for _, report := range f.reports {
		if filter.Status != "" && report.Status != filter.Status {
			continue
		}
		out = append(out, report)
	}
	return out, nil
}

func (f *fakeLedger) GetReport(_ context.Context, address domainbounty.Address) (bounty.ReportDetail, error) {
	for _, report := range f.reports {
		if report.Address == address {
			return bounty.ReportDetail{Report: report, Events: []ports.LedgerEvent{{EventID: 1, Kind: bounty.EventReportSubmitted, Actor: report.Researcher}}}, nil
		}
	}
	return bounty.ReportDetail{}, domainbounty.ErrRecordNotFound
}

func (f *fakeLedger) ApproveReport(_ context.Context, input bounty.DecideReportInput) (ports.ReportRecord, error) {
	f.decisions = append(f.decisions, input)
	return ports.ReportRecord{Address: input.Report, Status: domainbounty.StatusApproved}, nil
}

func (f *fakeLedger) RejectReport(_ context.Context, input bounty.DecideReportInput) (ports.ReportRecord, error) {
	f.decisions = append(f.decisions, input)
	return ports.ReportRecord{Address: input.Report, Status: domainbounty.StatusRejected}, nil
}

func (f *fakeLedger) ToggleActive(_ context.Context, input bounty.ToggleActiveInput) (ports.VaultRecord, error) {
	f.toggles = append(f.toggles, input)
	return ports.VaultRecord{Address: input.Vault}, nil
}

func newFakeLedger() *fakeLedger {
	vault := domainbounty.VaultAddress("acme")
	return &fakeLedger{
		vaults: []ports.VaultRecord{{Address: vault, Team: "acme", Governance: "gov", Active: true, TotalFunded: 1000}},
		reports: []ports.ReportRecord{
			{Address: domainbounty.ReportAddress(vault, "alice", 0), Vault: vault, Researcher: "alice", Status: domainbounty.StatusPaid, PayoutAmount: 500},
			{Address: domainbounty.ReportAddress(vault, "bob", 1), Vault: vault, Researcher: "bob", Status: domainbounty.StatusPending, PayoutAmount: 200},
		},
	}
}

// drain runs cmd and feeds its message back until the model settles.
func drain(t *testing.T, m *vaultModel, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		if i > 10 {
			t.Fatalf("model did not settle")
		}
		_, cmd = m.Update(cmd())
	}
}

func key(value string) tea.KeyMsg {
	if value == "tab" {
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(value)}
}

func press(t *testing.T, m *vaultModel, value string) {
	t.Helper()
	_, cmd := m.Update(key(value))
	drain(t, m, cmd)
}

func newLoadedModel(t *testing.T, ledger *fakeLedger) *vaultModel {
	t.Helper()
	m := NewVaultModel(context.Background(), ledger, Options{Caller: "gov"}).(*vaultModel)
	drain(t, m, m.loadVaultsCmd())
	return m
}

func TestConsoleLoadsVaultReportsAndDetail(t *testing.T) {
	ledger := newFakeLedger()
	m := newLoadedModel(t, ledger)

	if len(m.reports) != 2 || !m.hasDetail {
		t.Fatalf("reports=%d hasDetail=%v", len(m.reports), m.hasDetail)
	}
	if ledger.lastQuery.Vault == nil || *ledger.lastQuery.Vault != ledger.vaults[0].Address {
		t.Fatalf("reports were not scoped to the selected vault")
	}
	view := m.View()
	for _, want := range []string{"Bounty Vault Console", "team=acme", "researcher=alice", "report_submitted"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestConsoleApprovesOnlyPendingReports(t *testing.T) {
	ledger := newFakeLedger()
	m := newLoadedModel(t, ledger)
	press(t, m, "tab")

	press(t, m, "a")
	if len(ledger.decisions) != 0 {
		t.Fatalf("paid report was decided")
	}
	if !strings.Contains(m.status, "only pending") {
		t.Fatalf("status = %q", m.status)
	}

	press(t, m, "j")
	press(t, m, "x")
	if len(ledger.decisions) != 1 {
		t.Fatalf("decisions = %d, want 1", len(ledger.decisions))
	}
	decision := ledger.decisions[0]
	if decision.Caller != "gov" || decision.Report != ledger.reports[1].Address || decision.Reason != "rejected from console" {
		t.Fatalf("decision = %+v", decision)
	}
	if len(m.auditLogs) != 1 || !strings.Contains(m.auditLogs[0], "action=reject result=rejected") {
		t.Fatalf("audit logs = %v", m.auditLogs)
	}
}

func TestConsoleStatusFilterAndToggle(t *testing.T) {
	ledger := newFakeLedger()
	m := newLoadedModel(t, ledger)

	press(t, m, "f")
	if ledger.lastQuery.Status != domainbounty.StatusPending {
		t.Fatalf("filter status = %q, want pending", ledger.lastQuery.Status)
	}
	if len(m.reports) != 1 || m.reports[0].Researcher != "bob" {
		t.Fatalf("filtered reports = %+v", m.reports)
	}

	press(t, m, "t")
	if len(ledger.toggles) != 1 || ledger.toggles[0].Caller != "gov" {
		t.Fatalf("toggles = %+v", ledger.toggles)
	}
}

func TestConsoleQuitKey(t *testing.T) {
	m := NewVaultModel(context.Background(), newFakeLedger(), Options{}).(*vaultModel)
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
