package commands

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/monitoring-tools/xtender/pkg/xtender"
)

// process exit codes
const (
	ExitCodeOK    = 0
	ExitCodeError = 2
)

var (
	flagKeyFile    string
	flagOpspack    string
	flagSequential bool
	flagDebug      bool
)

var rootCmd = &cobra.Command{
	Use:   "xtender [flags] -- <template> [template...]",
	Short: "Run Nagios compatible plugin checks in parallel and print Geneos Toolkit CSV.",
	Long: `Run one or more Nagios compatible plugin checks in parallel
and return the results in a format compatible with the Geneos
Toolkit Plugin.

To decrypt encrypted environment variables, a key file must be
provided. The key file can be provided either by using the
--key-file option, or by placing a file named "secret.key" in
the /opt/itrs/xtender/ directory. The key file must be readable by
the user running the xtender binary.

All arguments following -- will be names of, or paths to, templates.
For templates in the /opt/itrs/xtender/templates/ directory it is
possible to just specify the template name without the path and the
file extension.

The template file format is YAML:
- name: <name>
  command: |
    <command with args>
  timeout: <timeout> # (optional)`,
	Example: `  * Run all checks from the template "network-base" and a custom
    template located at /path/to/other/template.yaml:

%> xtender -- network-base /path/to/other/template.yaml`,
	DisableAutoGenTag: true,
	Run:               run,
}

func init() {
	rootCmd.Flags().StringVarP(&flagKeyFile, "key-file", "k", "", "key file for decrypting encrypted environment variables")
	rootCmd.Flags().StringVarP(&flagOpspack, "opspack", "o", "", "convert an Opspack JSON file to a template and print it to stdout")
	rootCmd.Flags().BoolVarP(&flagSequential, "sequential", "s", false, "run checks sequentially instead of in parallel")
	rootCmd.Flags().BoolVarP(&flagDebug, "debug", "d", false, "enable debug logging")
}

// Execute runs the command line interface.
func Execute(build, revision string) {
	rootCmd.Version = fmt.Sprintf("%s.%s", build, revision)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitCodeError)
	}
}

func run(cmd *cobra.Command, args []string) {
	if runtime.GOOS == "windows" {
		fmt.Fprintln(os.Stderr, "this application is not supported on windows")
		os.Exit(ExitCodeError)
	}

	if flagDebug {
		xtender.SetLogLevel("debug")
	} else {
		xtender.SetLogLevel("error")
	}

	keys := loadKeys()

	if flagOpspack != "" {
		convertOpspack(flagOpspack)
		os.Exit(ExitCodeOK)
	}

	if len(args) == 0 {
		xtender.LogError(fmt.Errorf("no templates given, see --help for usage"))
		os.Exit(ExitCodeError)
	}

	templates := xtender.LoadTemplates(args)
	checks, err := templates.BuildChecks(keys)
	if err != nil {
		xtender.LogError(err)
		os.Exit(ExitCodeError)
	}

	var results xtender.CheckResults
	if flagSequential {
		results = xtender.RunChecksSequential(cmd.Context(), checks)
	} else {
		results = xtender.RunChecksParallel(cmd.Context(), checks)
	}

	csv := results.Process().AsCSV()
	fmt.Print(withTemplatesHeadline(csv, templates.Found, templates.Missing))
	os.Exit(ExitCodeOK)
}

// loadKeys loads the key file from the --key-file path or the default
// location. A missing default key file is fine, a broken one is not.
func loadKeys() *xtender.KeyStore {
	keys := xtender.NewKeyStore()

	if flagKeyFile != "" {
		keyFile, err := xtender.LoadKeyFile(flagKeyFile)
		if err != nil {
			xtender.LogError(err)
			os.Exit(ExitCodeError)
		}
		keys.Set(keyFile)

		return keys
	}

	raw, err := os.ReadFile(xtender.DefaultKeyFile)
	if err != nil {
		xtender.LogDebug(fmt.Errorf("--key-file option not used and no default key file found, no decryption will be possible"))

		return keys
	}

	keyFile, err := xtender.ParseKeyFile(raw)
	if err != nil {
		xtender.LogError(fmt.Errorf("unable to parse default key file %s: %s", xtender.DefaultKeyFile, err.Error()))
		os.Exit(ExitCodeError)
	}
	keys.Set(keyFile)

	return keys
}

func convertOpspack(path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		xtender.LogError(fmt.Errorf("unable to read opspack file: %s", err.Error()))
		os.Exit(ExitCodeError)
	}

	opspack, err := xtender.ParseOpspack(raw)
	if err != nil {
		xtender.LogError(fmt.Errorf("unable to parse opspack %s: %s", path, err.Error()))
		os.Exit(ExitCodeError)
	}

	fmt.Print(opspack.Template())
}

// withTemplatesHeadline inserts the found and missing template names
// right after the CSV header so they show up as headline rows.
func withTemplatesHeadline(results string, found, missing []string) string {
	lines := strings.Split(results, "\n")

	headline := []string{
		fmt.Sprintf("<!>templatesFound,%s", strings.Join(found, ", ")),
		fmt.Sprintf("<!>templatesNotFound,%s", strings.Join(missing, ", ")),
	}

	withHeadline := make([]string, 0, len(lines)+2)
	withHeadline = append(withHeadline, lines[0])
	withHeadline = append(withHeadline, headline...)
	withHeadline = append(withHeadline, lines[1:]...)

	return strings.Join(withHeadline, "\n")
}
