package xtender

import (
	"strconv"
	"strings"
)

// csvHeader lists the output columns. The order is part of the output
// contract, downstream parsing depends on it.
const csvHeader = "name,status,shortOutput,label,value,uom,warn,crit,min,max,command,performanceDataString,longOutput,executionTime,variablesFound,variablesNotFound"

// ProcessedCheckResult is one CSV row. A check with two or more
// performance metrics yields one main row plus one row per metric.
type ProcessedCheckResult struct {
	Name                  string
	Status                *int64
	ShortOutput           string
	Label                 string
	Value                 *float64
	Uom                   string
	Warn                  string
	Crit                  string
	Min                   string
	Max                   string
	Command               string
	PerformanceDataString string
	LongOutput            string
	ExecutionTime         string
	VariablesFound        string
	VariablesNotFound     string
}

type ProcessedCheckResults []ProcessedCheckResult

func (p *ProcessedCheckResult) addPerfMetric(metric perfMetric) {
	p.Label = metric.label
	p.Value = metric.value
	p.Uom = metric.uom
	p.Warn = metric.warn
	p.Crit = metric.crit
	p.Min = metric.min
	p.Max = metric.max
}

func (p *ProcessedCheckResult) statusFromPerfdata(metric perfMetric) {
	if p.Status != nil {
		return
	}
	p.Status = metric.status()
}

func mainEntry(cr *CheckResult) ProcessedCheckResult {
	return ProcessedCheckResult{
		Name:                  cr.Name,
		Status:                cr.Status,
		ShortOutput:           cr.ShortOutput,
		Command:               cr.Command,
		PerformanceDataString: escapeChars(cr.PerformanceData),
		LongOutput:            cr.LongOutput,
		ExecutionTime:         cr.ExecutionTime,
		VariablesFound:        cr.VariablesFound(),
		VariablesNotFound:     cr.VariablesNotFound(),
	}
}

func secondaryEntry(cr *CheckResult, label string) ProcessedCheckResult {
	return ProcessedCheckResult{
		Name: "\t" + cr.Name + "#" + label,
	}
}

// process turns one check result into its CSV rows. A single metric is
// folded into the main row, multiple metrics get one extra row each.
func (cr *CheckResult) process() ProcessedCheckResults {
	tokens := splitPerfTokens(cr.PerformanceData)

	if len(tokens) < 2 {
		entry := mainEntry(cr)
		if len(tokens) == 1 {
			metric := parsePerfMetric(tokens[0])
			entry.addPerfMetric(metric)
			entry.statusFromPerfdata(metric)
		}

		return ProcessedCheckResults{entry}
	}

	results := make(ProcessedCheckResults, 0, len(tokens)+1)
	results = append(results, mainEntry(cr))

	for _, token := range tokens {
		metric := parsePerfMetric(token)
		entry := secondaryEntry(cr, metric.label)
		entry.addPerfMetric(metric)
		entry.statusFromPerfdata(metric)
		results = append(results, entry)
	}

	return results
}

// AsCSV renders the rows including the header line. Fields are written
// verbatim without quoting, escaping already happened while the rows were
// built. An empty batch still prints the header and one empty row.
func (prs ProcessedCheckResults) AsCSV() string {
	rows := prs
	if len(rows) == 0 {
		rows = ProcessedCheckResults{{}}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, csvHeader)
	for i := range rows {
		lines = append(lines, strings.Join(rows[i].record(), ","))
	}

	return strings.Join(lines, "\n") + "\n"
}

func (p *ProcessedCheckResult) record() []string {
	return []string{
		p.Name,
		formatStatus(p.Status),
		p.ShortOutput,
		p.Label,
		formatValue(p.Value),
		p.Uom,
		p.Warn,
		p.Crit,
		p.Min,
		p.Max,
		p.Command,
		p.PerformanceDataString,
		p.LongOutput,
		p.ExecutionTime,
		p.VariablesFound,
		p.VariablesNotFound,
	}
}

func formatStatus(status *int64) string {
	if status == nil {
		return ""
	}

	return strconv.FormatInt(*status, 10)
}

// formatValue prints floats the way other tools in the pipeline expect,
// integral values keep a trailing .0.
func formatValue(value *float64) string {
	if value == nil {
		return ""
	}

	s := strconv.FormatFloat(*value, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}

	return s
}
