package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/splice/internal/errors"
)

// DiagnosticReporter provides user-friendly error reporting and diagnostics
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return NewDiagnosticReporterTo(os.Stderr, verbose)
}

// NewDiagnosticReporterTo creates a reporter writing to out
func NewDiagnosticReporterTo(out io.Writer, verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{verbose: verbose, out: out}
}

// ReportWarning provides user-friendly warning reporting
func (r *DiagnosticReporter) ReportWarning(message string, suggestions ...string) {
	warn := color.New(color.FgYellow, color.Bold)
	warn.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
	for _, suggestion := range suggestions {
		fmt.Fprintf(r.out, "  - %s\n", suggestion)
	}
}

// ReportError reports every diagnostic err carries, or err itself when it
// carries none
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	fmt.Fprintf(r.out, "\nERROR: Resolution Failed\n")
	fmt.Fprintf(r.out, "========================\n\n")

	items, ok := errors.Extract(err)
	if !ok {
		r.reportBasicError(err)
		fmt.Fprintf(r.out, "\n")
		return
	}

	for i, d := range items {
		r.reportDiagnostic(i+1, d)
	}
	r.printTally(items)
	r.printAdditionalHelp(items)
	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) reportDiagnostic(index int, d *errors.Diagnostic) {
	r.printErrorHeader(index, d.Kind)

	fmt.Fprintf(r.out, "Message: %s\n", d.Message)
	if loc := d.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "Location: %s\n", loc)
	}
	fmt.Fprintf(r.out, "\n")

	if r.verbose && d.Cause != nil {
		fmt.Fprintf(r.out, "Underlying cause: %s\n\n", d.Cause.Error())
	}

	if context := d.Context(); len(context) > 0 {
		r.printContext(context)
	}

	if suggestions := d.Suggestions(); len(suggestions) > 0 {
		r.printSuggestions(suggestions)
	}
}

func (r *DiagnosticReporter) reportBasicError(err error) {
	fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())

	errorMsg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(errorMsg, "go.mod") || strings.Contains(errorMsg, "module"):
		fmt.Fprintf(r.out, "This appears to be a module-related issue.\n")
		fmt.Fprintf(r.out, "Common solutions:\n")
		fmt.Fprintf(r.out, "  - Check your go.mod file\n")
		fmt.Fprintf(r.out, "  - Try specifying --module flag explicitly\n")
	case strings.Contains(errorMsg, "yaml") || strings.Contains(errorMsg, "descriptor"):
		fmt.Fprintf(r.out, "This appears to be a descriptor document issue.\n")
		fmt.Fprintf(r.out, "Common solutions:\n")
		fmt.Fprintf(r.out, "  - Check the YAML syntax of your *.splice.yaml files\n")
		fmt.Fprintf(r.out, "  - Ensure the top-level keys are specifications, dependencies and injectors\n")
	}
}

func (r *DiagnosticReporter) printErrorHeader(index int, kind errors.Kind) {
	var title string
	var attr color.Attribute

	switch kind {
	case errors.IncompleteSpecification:
		title, attr = "Incomplete Specification", color.FgYellow
	case errors.InvalidSpecification:
		title, attr = "Invalid Specification", color.FgRed
	case errors.InternalError:
		title, attr = "Internal Error", color.FgMagenta
	default:
		title, attr = "Unknown Error", color.FgRed
	}

	header := fmt.Sprintf("[%d] %s", index, title)
	color.New(attr, color.Bold).Fprintf(r.out, "%s\n", header)
	fmt.Fprintf(r.out, "%s\n", strings.Repeat("-", len(header)))
}

// printContext prints context information in a readable format
func (r *DiagnosticReporter) printContext(context map[string]interface{}) {
	fmt.Fprintf(r.out, "Context:\n")

	importantKeys := []string{"key", "requested_by", "dependency", "parent", "existing_location", "missing"}
	printed := make(map[string]bool)

	for _, key := range importantKeys {
		if value, exists := context[key]; exists {
			fmt.Fprintf(r.out, "   %s: %v\n", r.formatContextKey(key), value)
			printed[key] = true
		}
	}

	rest := make([]string, 0, len(context))
	for key := range context {
		if !printed[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		fmt.Fprintf(r.out, "   %s: %v\n", r.formatContextKey(key), context[key])
	}

	fmt.Fprintf(r.out, "\n")
}

// formatContextKey formats context keys to be more readable
func (r *DiagnosticReporter) formatContextKey(key string) string {
	switch key {
	case "key":
		return "Requested Type"
	case "requested_by":
		return "Requested By"
	case "existing_location":
		return "Previously Declared At"
	default:
		parts := strings.Split(key, "_")
		for i, part := range parts {
			if len(part) > 0 {
				parts[i] = strings.ToUpper(part[:1]) + part[1:]
			}
		}
		return strings.Join(parts, " ")
	}
}

// printSuggestions prints actionable suggestions
func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")

	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}

	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) printTally(items []*errors.Diagnostic) {
	counts := make(map[errors.Kind]int)
	for _, d := range items {
		counts[d.Kind]++
	}

	var parts []string
	for _, kind := range []errors.Kind{errors.IncompleteSpecification, errors.InvalidSpecification, errors.InternalError} {
		if counts[kind] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[kind], strings.ToLower(kindLabel(kind))))
		}
	}

	noun := "diagnostics"
	if len(items) == 1 {
		noun = "diagnostic"
	}
	fmt.Fprintf(r.out, "%d %s (%s)\n\n", len(items), noun, strings.Join(parts, ", "))
}

func kindLabel(kind errors.Kind) string {
	switch kind {
	case errors.IncompleteSpecification:
		return "Incomplete"
	case errors.InvalidSpecification:
		return "Invalid"
	default:
		return "Internal"
	}
}

// printAdditionalHelp prints help for the kinds that occurred
func (r *DiagnosticReporter) printAdditionalHelp(items []*errors.Diagnostic) {
	seen := make(map[errors.Kind]bool)
	for _, d := range items {
		seen[d.Kind] = true
	}

	if seen[errors.IncompleteSpecification] {
		fmt.Fprintf(r.out, "Missing Providers:\n")
		fmt.Fprintf(r.out, "  - Add a factory for the requested type to a specification the injector uses\n")
		fmt.Fprintf(r.out, "  - Check that qualifiers match exactly; a labelled type is a different key\n")
		fmt.Fprintf(r.out, "  - Child injectors receive parent types only through declared dependencies\n\n")
	}
	if seen[errors.InternalError] {
		fmt.Fprintf(r.out, "Internal errors indicate a bug in splice itself.\n")
		fmt.Fprintf(r.out, "  - Run with --debug and include the trace output when reporting it\n\n")
	}

	fmt.Fprintf(r.out, "For more help:\n")
	fmt.Fprintf(r.out, "  - Run with --verbose for more detailed output\n")
	fmt.Fprintf(r.out, "  - Review the example descriptors in the examples/ directory\n")
}

// Debug prints debug information when verbose mode is enabled
func (r *DiagnosticReporter) Debug(format string, args ...interface{}) {
	if r.verbose {
		fmt.Fprintf(r.out, "[DEBUG] "+format+"\n", args...)
	}
}

// DebugSection prints a debug section header when verbose mode is enabled
func (r *DiagnosticReporter) DebugSection(section string) {
	if r.verbose {
		fmt.Fprintf(r.out, "[DEBUG] === %s ===\n", section)
	}
}

// ReportSuccess reports a successful run with summary information
func (r *DiagnosticReporter) ReportSuccess(summary Summary) {
	fmt.Fprintf(r.out, "\nResolution Completed Successfully!\n")
	fmt.Fprintf(r.out, "==================================\n\n")

	fmt.Fprintf(r.out, "Loaded %d descriptor files\n", len(summary.DescriptorFiles))
	fmt.Fprintf(r.out, "Planned %d injectors\n", summary.Injectors)

	if summary.Cached > 0 {
		fmt.Fprintf(r.out, "Reused %d cached plans\n", summary.Cached)
	}
	if summary.Frames > 0 {
		fmt.Fprintf(r.out, "Laid out %d frames\n", summary.Frames)
	}
	if summary.PlanFile != "" {
		fmt.Fprintf(r.out, "\nPlan written to %s (build %s)\n", summary.PlanFile, summary.BuildID)
	}
}
