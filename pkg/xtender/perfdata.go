package xtender

import (
	"strconv"
	"strings"

	"github.com/sni/shelltoken"

	"github.com/monitoring-tools/xtender/pkg/threshold"
)

// perfMetric is one parsed performance data token like
// 'Load Average'=0.01;10;20;0;100. Unset fields stay nil.
type perfMetric struct {
	label string
	value *float64
	uom   string
	warn  string
	crit  string
	min   string
	max   string
}

// splitPerfTokens splits a performance data string into its metric
// tokens, honoring single quoted labels with spaces.
func splitPerfTokens(perf string) []string {
	if perf == "" {
		return nil
	}

	tokens, err := shelltoken.SplitQuotes(perf, " ", 0)
	if err != nil {
		log.Errorf("unable to split performance data %q: %s", perf, err.Error())

		return nil
	}

	filtered := tokens[:0]
	for _, token := range tokens {
		if token != "" {
			filtered = append(filtered, token)
		}
	}

	return filtered
}

// parsePerfMetric parses a single metric token. Thresholds and bounds are
// kept as raw strings, an empty field counts as unset.
func parsePerfMetric(token string) perfMetric {
	metric := perfMetric{}

	fields := strings.Split(token, ";")
	head := fields[0]

	label, valueStr, hasValue := strings.Cut(head, "=")
	if hasValue && label != "" && valueStr != "" {
		metric.label = strings.Trim(label, "'")

		numLen := 0
		for numLen < len(valueStr) && (valueStr[numLen] == '.' || (valueStr[numLen] >= '0' && valueStr[numLen] <= '9')) {
			numLen++
		}
		if numLen > 0 {
			if value, err := strconv.ParseFloat(valueStr[:numLen], 64); err == nil {
				metric.value = &value
			}
		}
		metric.uom = valueStr[numLen:]
	}

	set := func(dst *string, i int) {
		if i < len(fields) && fields[i] != "" {
			*dst = fields[i]
		}
	}
	set(&metric.warn, 1)
	set(&metric.crit, 2)
	set(&metric.min, 3)
	set(&metric.max, 4)

	return metric
}

// status derives a nagios status from the value and the warn and crit
// thresholds. Returns nil when there is no value to compare.
func (m *perfMetric) status() *int64 {
	if m.value == nil {
		return nil
	}

	if alerts, ok := m.alerts(m.crit); ok && alerts {
		status := CheckExitCritical

		return &status
	}

	if alerts, ok := m.alerts(m.warn); ok && alerts {
		status := CheckExitWarning

		return &status
	}

	status := CheckExitOK

	return &status
}

func (m *perfMetric) alerts(def string) (alerts, ok bool) {
	if def == "" {
		return false, false
	}

	thres, err := threshold.NewThreshold(def)
	if err != nil {
		log.Debugf("ignoring unparsable threshold %q: %s", def, err.Error())

		return false, false
	}

	return thres.Alerts(*m.value), true
}
