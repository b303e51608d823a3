package xtender

import (
	"fmt"
	"strings"
	"time"
)

// nagios exit codes
const (
	CheckExitOK       = int64(0)
	CheckExitWarning  = int64(1)
	CheckExitCritical = int64(2)
	CheckExitUnknown  = int64(3)
)

// CheckResult is the outcome of one check run. The string fields are
// stored with commas and newlines already escaped so they can go into a
// CSV row verbatim. PerformanceData stays unescaped, it is still parsed
// during row projection.
type CheckResult struct {
	Name            string
	Command         string
	SecretCommand   string
	Status          *int64
	ShortOutput     string
	LongOutput      string
	PerformanceData string
	ExecutionTime   string

	variablesFound    []Variable
	variablesNotFound []Variable
}

// VariablesFound renders the variables used by the check, secrets masked.
func (cr *CheckResult) VariablesFound() string {
	return escapeChars(renderVariables(cr.variablesFound))
}

// VariablesNotFound renders the variable references that had no value.
func (cr *CheckResult) VariablesNotFound() string {
	return escapeChars(renderVariables(cr.variablesNotFound))
}

// CheckResultBuilder assembles a CheckResult, escaping happens in Build.
type CheckResultBuilder struct {
	name             string
	command          string
	secretCommand    string
	hasSecretCommand bool
	status           *int64
	shortOutput      string
	longOutput       string
	performanceData  string
	executionTime    string

	variablesFound    []Variable
	variablesNotFound []Variable
}

func NewCheckResultBuilder() *CheckResultBuilder {
	return &CheckResultBuilder{}
}

func (b *CheckResultBuilder) Name(name string) *CheckResultBuilder {
	b.name = name

	return b
}

func (b *CheckResultBuilder) Command(command string) *CheckResultBuilder {
	b.command = command

	return b
}

func (b *CheckResultBuilder) SecretCommand(secretCommand string) *CheckResultBuilder {
	b.secretCommand = secretCommand
	b.hasSecretCommand = true

	return b
}

func (b *CheckResultBuilder) Status(status int64) *CheckResultBuilder {
	b.status = &status

	return b
}

func (b *CheckResultBuilder) ShortOutput(shortOutput string) *CheckResultBuilder {
	b.shortOutput = shortOutput

	return b
}

func (b *CheckResultBuilder) Variables(found, notFound []Variable) *CheckResultBuilder {
	b.variablesFound = found
	b.variablesNotFound = notFound

	return b
}

// ParseOutput splits raw plugin output into short output, long output and
// performance data.
func (b *CheckResultBuilder) ParseOutput(output string) *CheckResultBuilder {
	b.shortOutput = extractShortOutput(output)
	b.longOutput = extractLongOutput(output)
	b.performanceData = extractPerformanceData(output)

	return b
}

func (b *CheckResultBuilder) ExecutionTime(duration time.Duration) *CheckResultBuilder {
	b.executionTime = fmt.Sprintf("%.4f s", duration.Seconds())

	return b
}

func (b *CheckResultBuilder) Build() *CheckResult {
	secretCommand := b.command
	if b.hasSecretCommand {
		secretCommand = b.secretCommand
	}

	return &CheckResult{
		Name:              escapeChars(b.name),
		Command:           escapeChars(b.command),
		SecretCommand:     escapeChars(secretCommand),
		Status:            b.status,
		ShortOutput:       escapeChars(b.shortOutput),
		LongOutput:        escapeChars(b.longOutput),
		PerformanceData:   b.performanceData,
		ExecutionTime:     b.executionTime,
		variablesFound:    b.variablesFound,
		variablesNotFound: b.variablesNotFound,
	}
}

// CheckResults is a batch of results in check order.
type CheckResults []*CheckResult

// Process projects every result into its CSV rows.
func (crs CheckResults) Process() ProcessedCheckResults {
	processed := make(ProcessedCheckResults, 0, len(crs))
	for _, cr := range crs {
		processed = append(processed, cr.process()...)
	}

	return processed
}

func escapeChars(s string) string {
	s = strings.ReplaceAll(s, ",", "\\,")

	return strings.ReplaceAll(s, "\n", "\\n")
}

// extractShortOutput returns the first line up to any pipe character.
func extractShortOutput(output string) string {
	firstLine, _, _ := strings.Cut(output, "\n")
	firstLine, _, _ = strings.Cut(firstLine, "|")

	return strings.TrimSpace(firstLine)
}

// extractLongOutput returns everything after the first line. Multi-line
// performance data mixed into the output is not separated out.
func extractLongOutput(output string) string {
	_, rest, found := strings.Cut(output, "\n")
	if !found {
		return ""
	}

	return strings.TrimSpace(strings.TrimSuffix(rest, "\n"))
}

// extractPerformanceData returns everything after the first pipe
// character. Plugin usage banners often contain pipes, those are not
// performance data.
func extractPerformanceData(output string) string {
	if strings.Contains(output, "Usage: check") ||
		strings.Contains(output, "[-h|--help]") ||
		strings.Contains(output, "usage: check") {
		return ""
	}

	_, perf, found := strings.Cut(output, "|")
	if !found {
		return ""
	}

	return strings.TrimSpace(perf)
}
