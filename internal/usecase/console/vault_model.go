package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bountyvault/internal/bootstrap/logging"
	domainbounty "bountyvault/internal/domain/bounty"
	"bountyvault/internal/ports"
	"bountyvault/internal/usecase/bounty"
)

const maxShownEvents = 5
const maxAuditLines = 8

const (
	focusVaults  = "vaults"
	focusReports = "reports"
)

// statusFilters is the cycle order of the report status filter; "" is all.
var statusFilters = []domainbounty.ReportStatus{
	"",
	domainbounty.StatusPending,
	domainbounty.StatusApproved,
	domainbounty.StatusRejected,
	domainbounty.StatusPaid,
}

// Ledger is the slice of the bounty service the console drives.
type Ledger interface {
	ListVaults(ctx context.Context, filter ports.VaultFilter) ([]ports.VaultRecord, error)
	ListReports(ctx context.Context, filter ports.ReportFilter) ([]ports.ReportRecord, error)
	GetReport(ctx context.Context, report domainbounty.Address) (bounty.ReportDetail, error)
	ApproveReport(ctx context.Context, input bounty.DecideReportInput) (ports.ReportRecord, error)
	RejectReport(ctx context.Context, input bounty.DecideReportInput) (ports.ReportRecord, error)
	ToggleActive(ctx context.Context, input bounty.ToggleActiveInput) (ports.VaultRecord, error)
}

type Options struct {
	// Caller is the identity every console action is taken as.
	Caller          string
	Team            string
	RejectReason    string
	RefreshInterval time.Duration
}

type vaultModel struct {
	ctx             context.Context
	ledger          Ledger
	caller          string
	team            string
	rejectReason    string
	refreshInterval time.Duration

	focus        string
	filterIndex  int
	vaults       []ports.VaultRecord
	vaultIndex   int
	reports      []ports.ReportRecord
	reportIndex  int
	detail       bounty.ReportDetail
	hasDetail    bool
	status       string
	auditLogs    []string
	lastActionAt time.Time
}

type vaultsLoadedMsg struct {
	items []ports.VaultRecord
	err   error
}

type reportsLoadedMsg struct {
	vault domainbounty.Address
	items []ports.ReportRecord
	err   error
}

type reportDetailLoadedMsg struct {
	report domainbounty.Address
	detail bounty.ReportDetail
	err    error
}

type tickMsg struct{}

type actionDoneMsg struct {
	action string
	target string
	result string
	err    error
}

func NewVaultModel(ctx context.Context, ledger Ledger, options Options) tea.Model {
	interval := options.RefreshInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	reason := strings.TrimSpace(options.RejectReason)
	if reason == "" {
		reason = "rejected from console"
	}

	return &vaultModel{
		ctx:             logging.WithComponent(ctx, "console"),
		ledger:          ledger,
		caller:          strings.TrimSpace(options.Caller),
		team:            strings.TrimSpace(options.Team),
		rejectReason:    reason,
		refreshInterval: interval,
		focus:           focusVaults,
		status:          "loading",
	}
}

func (m *vaultModel) Init() tea.Cmd {
	return tea.Batch(m.loadVaultsCmd(), m.tickCmd())
}

func (m *vaultModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tickMsg:
		return m, tea.Batch(m.loadVaultsCmd(), m.tickCmd())
	case vaultsLoadedMsg:
		if msg.err != nil {
			m.status = "refresh failed: " + msg.err.Error()
			return m, nil
		}
		m.vaults = msg.items
		if len(m.vaults) == 0 {
			m.vaultIndex = 0
			m.reports = nil
			m.hasDetail = false
			m.status = "no vaults"
			return m, nil
		}
		m.vaultIndex = clamp(m.vaultIndex, len(m.vaults))
		m.status = fmt.Sprintf("refreshed, %d vault(s)", len(m.vaults))
		return m, m.loadReportsCmd()
	case reportsLoadedMsg:
		vault, ok := m.selectedVault()
		if !ok || vault.Address != msg.vault {
			return m, nil
		}
		if msg.err != nil {
			m.status = "reports failed: " + msg.err.Error()
			return m, nil
		}
		m.reports = msg.items
		if len(m.reports) == 0 {
			m.reportIndex = 0
			m.hasDetail = false
			return m, nil
		}
		m.reportIndex = clamp(m.reportIndex, len(m.reports))
		return m, m.loadReportDetailCmd()
	case reportDetailLoadedMsg:
		report, ok := m.selectedReport()
		if !ok || report.Address != msg.report {
			return m, nil
		}
		if msg.err != nil {
			m.hasDetail = false
			m.status = "detail failed: " + msg.err.Error()
			return m, nil
		}
		m.detail = msg.detail
		m.hasDetail = true
		return m, nil
	case actionDoneMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("%s failed: %v", msg.action, msg.err)
		} else {
			m.status = fmt.Sprintf("%s done: %s", msg.action, msg.result)
		}
		m.appendAuditLog(msg.action, msg.target, msg.result, msg.err)
		return m, m.loadVaultsCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *vaultModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "g":
		m.status = "refreshing"
		return m, m.loadVaultsCmd()
	case "tab":
		if m.focus == focusVaults {
			m.focus = focusReports
		} else {
			m.focus = focusVaults
		}
		return m, nil
	case "f":
		m.filterIndex = (m.filterIndex + 1) % len(statusFilters)
		m.reportIndex = 0
		return m, m.loadReportsCmd()
	case "up", "k":
		return m, m.move(-1)
	case "down", "j":
		return m, m.move(1)
	case "a":
		return m, m.decideCmd("approve")
	case "x":
		return m, m.decideCmd("reject")
	case "t":
		return m, m.toggleCmd()
	}
	return m, nil
}

func (m *vaultModel) move(delta int) tea.Cmd {
	if m.focus == focusVaults {
		next := m.vaultIndex + delta
		if next < 0 || next >= len(m.vaults) {
			return nil
		}
		m.vaultIndex = next
		m.reportIndex = 0
		m.hasDetail = false
		return m.loadReportsCmd()
	}
	next := m.reportIndex + delta
	if next < 0 || next >= len(m.reports) {
		return nil
	}
	m.reportIndex = next
	return m.loadReportDetailCmd()
}

func (m *vaultModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))
	alertStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))

	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Bounty Vault Console"))
	builder.WriteString("\n")
	builder.WriteString(dimStyle.Render(fmt.Sprintf(
		"caller=%s team=%s status=%s focus=%s refresh=%s",
		firstNonEmpty(m.caller, "-"),
		firstNonEmpty(m.team, "all"),
		firstNonEmpty(string(statusFilters[m.filterIndex]), "all"),
		m.focus,
		m.refreshInterval,
	)))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Vaults"))
	builder.WriteString("\n")
	if len(m.vaults) == 0 {
		builder.WriteString(dimStyle.Render("- no vaults"))
		builder.WriteString("\n")
	}
	for index, vault := range m.vaults {
		state := "active"
		if !vault.Active {
			state = "inactive"
		}
		line := fmt.Sprintf("%s [%s] team=%s funded=%d paid_out=%d reports=%d",
			shortAddress(vault.Address), state, vault.Team, vault.TotalFunded, vault.TotalPaidOut, vault.TotalReports)
		if vault.TotalPaidOut > vault.TotalFunded {
			line = alertStyle.Render(line + " OVERDRAWN")
		}
		builder.WriteString(renderRow(line, index == m.vaultIndex, m.focus == focusVaults, selectedStyle))
	}
	builder.WriteString("\n")

	builder.WriteString(sectionStyle.Render("Reports"))
	builder.WriteString("\n")
	if len(m.reports) == 0 {
		builder.WriteString(dimStyle.Render("- no reports"))
		builder.WriteString("\n")
	}
	for index, report := range m.reports {
		line := fmt.Sprintf("%s [%s] %s researcher=%s payout=%d",
			shortAddress(report.Address), report.Status, report.Severity, report.Researcher, report.PayoutAmount)
		builder.WriteString(renderRow(line, index == m.reportIndex, m.focus == focusReports, selectedStyle))
	}
	builder.WriteString("\n")

	builder.WriteString(sectionStyle.Render("Detail"))
	builder.WriteString("\n")
	if !m.hasDetail {
		builder.WriteString(dimStyle.Render("- no detail"))
		builder.WriteString("\n\n")
	} else {
		report := m.detail.Report
		builder.WriteString(fmt.Sprintf("Report: %s\n", report.Address))
		builder.WriteString(fmt.Sprintf("Digest: %s\n", report.ContentDigest))
		builder.WriteString(fmt.Sprintf("Status: %s\n", report.Status))
		if report.Approver != nil {
			builder.WriteString(fmt.Sprintf("Decided by: %s\n", *report.Approver))
		}
		if report.Reason != nil {
			builder.WriteString(fmt.Sprintf("Reason: %s\n", *report.Reason))
		}
		builder.WriteString("\nRecent Events:\n")
		events := m.detail.Events
		if len(events) == 0 {
			builder.WriteString("- none\n")
		} else {
			start := len(events) - maxShownEvents
			if start < 0 {
				start = 0
			}
			for _, event := range events[start:] {
				builder.WriteString(fmt.Sprintf("- e%d %s %s amount=%d\n", event.EventID, event.Kind, event.Actor, event.Amount))
			}
		}
		builder.WriteString("\n")
	}

	builder.WriteString(sectionStyle.Render("Status"))
	builder.WriteString("\n")
	builder.WriteString("- " + firstNonEmpty(m.status, "ready"))
	builder.WriteString("\n\n")

	builder.WriteString(sectionStyle.Render("Audit Log"))
	builder.WriteString("\n")
	if len(m.auditLogs) == 0 {
		builder.WriteString(dimStyle.Render("- no actions"))
		builder.WriteString("\n\n")
	} else {
		for _, line := range m.auditLogs {
			builder.WriteString("- " + line)
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	builder.WriteString(dimStyle.Render("Keys: ↑/k ↓/j move  tab focus  f filter  g refresh  a approve  x reject  t toggle vault  q quit"))
	return builder.String()
}

func (m *vaultModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *vaultModel) loadVaultsCmd() tea.Cmd {
	return func() tea.Msg {
		items, err := m.ledger.ListVaults(m.ctx, ports.VaultFilter{Team: m.team})
		return vaultsLoadedMsg{items: items, err: err}
	}
}

func (m *vaultModel) loadReportsCmd() tea.Cmd {
	vault, ok := m.selectedVault()
	if !ok {
		return nil
	}
	status := statusFilters[m.filterIndex]
	return func() tea.Msg {
		items, err := m.ledger.ListReports(m.ctx, ports.ReportFilter{Vault: &vault.Address, Status: status})
		return reportsLoadedMsg{vault: vault.Address, items: items, err: err}
	}
}

func (m *vaultModel) loadReportDetailCmd() tea.Cmd {
	report, ok := m.selectedReport()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		detail, err := m.ledger.GetReport(m.ctx, report.Address)
		return reportDetailLoadedMsg{report: report.Address, detail: detail, err: err}
	}
}

func (m *vaultModel) decideCmd(action string) tea.Cmd {
	report, ok := m.selectedReport()
	if !ok {
		m.status = "no report selected"
		return nil
	}
	if report.Status != domainbounty.StatusPending {
		m.status = fmt.Sprintf("report is %s, only pending reports can be decided", report.Status)
		return nil
	}
	m.status = action + " in progress..."

	input := bounty.DecideReportInput{
		Caller: m.caller,
		Vault:  report.Vault,
		Report: report.Address,
	}
	apply := m.ledger.ApproveReport
	if action == "reject" {
		input.Reason = m.rejectReason
		apply = m.ledger.RejectReport
	}
	return func() tea.Msg {
		decided, err := apply(m.ctx, input)
		if err != nil {
			return actionDoneMsg{action: action, target: report.Address.String(), err: err}
		}
		return actionDoneMsg{action: action, target: report.Address.String(), result: string(decided.Status)}
	}
}

func (m *vaultModel) toggleCmd() tea.Cmd {
	vault, ok := m.selectedVault()
	if !ok {
		m.status = "no vault selected"
		return nil
	}
	m.status = "toggle in progress..."
	return func() tea.Msg {
		toggled, err := m.ledger.ToggleActive(m.ctx, bounty.ToggleActiveInput{Caller: m.caller, Vault: vault.Address})
		if err != nil {
			return actionDoneMsg{action: "toggle", target: vault.Address.String(), err: err}
		}
		return actionDoneMsg{action: "toggle", target: vault.Address.String(), result: fmt.Sprintf("active=%t", toggled.Active)}
	}
}

func (m *vaultModel) selectedVault() (ports.VaultRecord, bool) {
	if m.vaultIndex < 0 || m.vaultIndex >= len(m.vaults) {
		return ports.VaultRecord{}, false
	}
	return m.vaults[m.vaultIndex], true
}

func (m *vaultModel) selectedReport() (ports.ReportRecord, bool) {
	if m.reportIndex < 0 || m.reportIndex >= len(m.reports) {
		return ports.ReportRecord{}, false
	}
	return m.reports[m.reportIndex], true
}

func (m *vaultModel) appendAuditLog(action string, target string, result string, opErr error) {
	outcome := strings.TrimSpace(result)
	if opErr != nil {
		outcome = "error: " + opErr.Error()
	}
	if outcome == "" {
		outcome = "ok"
	}

	m.lastActionAt = time.Now().UTC()
	timestamp := m.lastActionAt.Format(time.RFC3339)
	line := fmt.Sprintf("%s actor=%s target=%s action=%s result=%s", timestamp, m.caller, shortHex(target), action, outcome)
	m.auditLogs = append([]string{line}, m.auditLogs...)
	if len(m.auditLogs) > maxAuditLines {
		m.auditLogs = m.auditLogs[:maxAuditLines]
	}

	attrs := []slog.Attr{
		slog.String("actor", m.caller),
		slog.String("target", target),
		slog.String("action", action),
		slog.String("result", outcome),
	}
	if opErr != nil && !errors.Is(opErr, context.Canceled) {
		logging.Warn(m.ctx, "console action failed", attrs...)
		return
	}
	logging.Info(m.ctx, "console action", attrs...)
}

func renderRow(line string, selected bool, focused bool, style lipgloss.Style) string {
	switch {
	case selected && focused:
		return style.Render("> "+line) + "\n"
	case selected:
		return "* " + line + "\n"
	default:
		return "  " + line + "\n"
	}
}

func clamp(index int, length int) int {
	if index < 0 {
		return 0
	}
	if index >= length {
		return length - 1
	}
	return index
}

func shortAddress(address domainbounty.Address) string {
	return shortHex(address.String())
}

func shortHex(value string) string {
	if len(value) <= 12 {
		return value
	}
	return value[:12]
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
