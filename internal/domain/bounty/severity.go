package bounty

import (
	"fmt"
	"strings"
)

// Severity indexes the four-slot reward schedule by position.
type Severity uint8

const (
	SeverityCritical Severity = iota
	SeverityHigh
	SeverityMedium
	SeverityLow
)

const severityCount = 4

var severityNames = [severityCount]string{"critical", "high", "medium", "low"}

func (s Severity) Valid() bool {
	return s < severityCount
}

func (s Severity) String() string {
	if !s.Valid() {
		return fmt.Sprintf("severity(%d)", uint8(s))
	}
	return severityNames[s]
}

func ParseSeverity(raw string) (Severity, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	for i, name := range severityNames {
		if trimmed == name {
			return Severity(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown severity %q", ErrInvalidArgument, raw)
}

func (s Severity) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: severity %d", ErrInvalidArgument, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Severities lists the tiers in schedule order.
func Severities() []Severity {
	return []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
}
