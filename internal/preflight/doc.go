// Package preflight checks that a prepare run can start: the configured
// directories are usable, the local dataset directory exists, the external
// programs resolve, and the corpus hub answers for the configured dataset.
//
// The CLI "asrprep check" command renders the results; "asrprep prepare"
// runs the same checks and stops before downloading anything when one fails.
package preflight
