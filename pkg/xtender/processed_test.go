package xtender

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertCSVLines(t *testing.T, results CheckResults, expected []string) {
	t.Helper()

	lines := strings.Split(strings.TrimSuffix(results.Process().AsCSV(), "\n"), "\n")
	assert.Equal(t, expected, lines)
}

func TestAsCSVEmptyResults(t *testing.T) {
	t.Parallel()

	assertCSVLines(t, CheckResults{}, []string{
		csvHeader,
		strings.Repeat(",", 15),
	})
}

func TestAsCSVShortOutputWithComma(t *testing.T) {
	t.Parallel()

	result := NewCheckResultBuilder().
		Name("Hello World with comma").
		Command("echo Hello, World").
		Status(0).
		ShortOutput("Hello, World").
		Build()
	result.PerformanceData = "1"

	assertCSVLines(t, CheckResults{result}, []string{
		csvHeader,
		"Hello World with comma,0,Hello\\, World,,,,,,,,echo Hello\\, World,1,,,,",
	})
}

func TestAsCSVHardcodedStatus(t *testing.T) {
	t.Parallel()

	result := NewCheckResultBuilder().
		Name("Foo Bar").
		Command("echo foo bar").
		Status(2).
		ShortOutput("foo bar").
		Build()

	assertCSVLines(t, CheckResults{result}, []string{
		csvHeader,
		"Foo Bar,2,foo bar,,,,,,,,echo foo bar,,,,,",
	})
}

func TestAsCSVMultiplePerfMetrics(t *testing.T) {
	t.Parallel()

	result := NewCheckResultBuilder().
		Name("check_snmpif test output").
		Command("check_snmpif traffic -v 2c -c public -i 4 -H 192.168.1.1 --warn-in 70m --warn-out 20m --crit-in 90m --crit-out 35m -b 100m").
		Status(0).
		ParseOutput("OK: Avg Traffic: 46.58kbps (0.05% / 100Mbps) in, 91.67kbps (0.09% / 100Mbps) out|in_traffic=0.05%;70.00;90.00;; out_traffic=0.09%;20.00;35.00;;").
		Build()

	assertCSVLines(t, CheckResults{result}, []string{
		csvHeader,
		"check_snmpif test output,0,OK: Avg Traffic: 46.58kbps (0.05% / 100Mbps) in\\, 91.67kbps (0.09% / 100Mbps) out,,,,,,,,check_snmpif traffic -v 2c -c public -i 4 -H 192.168.1.1 --warn-in 70m --warn-out 20m --crit-in 90m --crit-out 35m -b 100m,in_traffic=0.05%;70.00;90.00;; out_traffic=0.09%;20.00;35.00;;,,,,",
		"\tcheck_snmpif test output#in_traffic,0,,in_traffic,0.05,%,70.00,90.00,,,,,,,,",
		"\tcheck_snmpif test output#out_traffic,0,,out_traffic,0.09,%,20.00,35.00,,,,,,,,",
	})
}

func TestAsCSVDifferentKindsOfPerfdata(t *testing.T) {
	t.Parallel()

	result := NewCheckResultBuilder().
		Name("Connectivity 192.168.1.190").
		Command("/opt/opsview/monitoringscripts/plugins/check_icmp -H 192.168.1.190 -w 100.0,20% -c 500.0,60%").
		Status(0).
		ParseOutput("OK - 192.168.1.190: rta 0.222ms, lost 0%|rta=0.222ms;100.000;500.000;0; pl=0%;20;60;; rtmax=0.380ms;;;; rtmin=0.169ms;;;;").
		Build()

	assertCSVLines(t, CheckResults{result}, []string{
		csvHeader,
		"Connectivity 192.168.1.190,0,OK - 192.168.1.190: rta 0.222ms\\, lost 0%,,,,,,,,/opt/opsview/monitoringscripts/plugins/check_icmp -H 192.168.1.190 -w 100.0\\,20% -c 500.0\\,60%,rta=0.222ms;100.000;500.000;0; pl=0%;20;60;; rtmax=0.380ms;;;; rtmin=0.169ms;;;;,,,,",
		"\tConnectivity 192.168.1.190#rta,0,,rta,0.222,ms,100.000,500.000,0,,,,,,,",
		"\tConnectivity 192.168.1.190#pl,0,,pl,0.0,%,20,60,,,,,,,,",
		"\tConnectivity 192.168.1.190#rtmax,0,,rtmax,0.38,ms,,,,,,,,,,",
		"\tConnectivity 192.168.1.190#rtmin,0,,rtmin,0.169,ms,,,,,,,,,,",
	})
}

func TestAsCSVSinglePerfMetricFoldedIntoMainRow(t *testing.T) {
	t.Parallel()

	result := NewCheckResultBuilder().
		Name("SNMP CPU Usage 192.168.1.3").
		Command("/opt/opsview/monitoringscripts/plugins/check_snmp_loadavg -w 0 -c 1 -H 192.168.1.3 -C public -v 2c -p 161").
		ParseOutput("Status is WARNING - Load 0.01 (1 Min avg)|'Load Average'=0.01").
		Status(1).
		Build()

	assertCSVLines(t, CheckResults{result}, []string{
		csvHeader,
		"SNMP CPU Usage 192.168.1.3,1,Status is WARNING - Load 0.01 (1 Min avg),Load Average,0.01,,,,,,/opt/opsview/monitoringscripts/plugins/check_snmp_loadavg -w 0 -c 1 -H 192.168.1.3 -C public -v 2c -p 161,'Load Average'=0.01,,,,",
	})
}

func TestAsCSVSecondaryRowStatusFromThresholds(t *testing.T) {
	t.Parallel()

	result := NewCheckResultBuilder().
		Name("Interface 4 Traffic").
		Command("/opt/opsview/monitoringscripts/plugins/check_snmpif traffic -v 2c -c public -i 4 -H 192.168.1.1 --warn-in 1m --warn-out 20m --crit-in 2m --crit-out 35m -b 100m").
		ParseOutput("WARNING: Avg Traffic: 1.38Mbps (1.38% / 100Mbps) in, 445.17kbps (0.45% / 100Mbps) out|in_traffic=1.38%;1.00;2.00;; 'out traffic'=0.45%;20.00;35.00;;").
		Status(1).
		Build()

	assertCSVLines(t, CheckResults{result}, []string{
		csvHeader,
		"Interface 4 Traffic,1,WARNING: Avg Traffic: 1.38Mbps (1.38% / 100Mbps) in\\, 445.17kbps (0.45% / 100Mbps) out,,,,,,,,/opt/opsview/monitoringscripts/plugins/check_snmpif traffic -v 2c -c public -i 4 -H 192.168.1.1 --warn-in 1m --warn-out 20m --crit-in 2m --crit-out 35m -b 100m,in_traffic=1.38%;1.00;2.00;; 'out traffic'=0.45%;20.00;35.00;;,,,,",
		"\tInterface 4 Traffic#in_traffic,1,,in_traffic,1.38,%,1.00,2.00,,,,,,,,",
		"\tInterface 4 Traffic#out traffic,0,,out traffic,0.45,%,20.00,35.00,,,,,,,,",
	})
}

func TestAsCSVVariableColumns(t *testing.T) {
	t.Parallel()

	result := NewCheckResultBuilder().
		Name("login check").
		Command("check_login -u monitor -p ***").
		Status(0).
		ShortOutput("OK").
		Variables(
			[]Variable{
				{Kind: VariablePublic, Name: "USER", Value: "monitor", Found: true},
				{Kind: VariableSecret, Name: "PASSWORD", Value: "+encs+00", Found: true},
			},
			[]Variable{{Kind: VariablePublic, Name: "MISSING"}},
		).
		Build()

	assertCSVLines(t, CheckResults{result}, []string{
		csvHeader,
		"login check,0,OK,,,,,,,,check_login -u monitor -p ***,,,,USER=\"monitor\"\\,PASSWORD=***,MISSING",
	})
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	floatP := func(f float64) *float64 { return &f }

	assert.Equal(t, "", formatValue(nil))
	assert.Equal(t, "0.0", formatValue(floatP(0)))
	assert.Equal(t, "1.0", formatValue(floatP(1)))
	assert.Equal(t, "0.38", formatValue(floatP(0.38)))
	assert.Equal(t, "0.05", formatValue(floatP(0.05)))
	assert.Equal(t, "42.0", formatValue(floatP(42)))
}
