// Backrot rotates dated backup files through generational folders.
//
// Files arriving in the daily folder are promoted to weekly, monthly and
// yearly folders when their date falls on a promotion boundary, evicted
// to quarantine when it does not, and reaped from quarantine after a
// grace period.
//
// Usage:
//
//	# One rotation pass over the folders next to the binary
//	backrot
//
//	# One pass over an explicit root, chatty
//	backrot run --root /srv/backups -v 2
//
//	# Show what a pass would do without touching anything
//	backrot run --dry-run
//
//	# Keep rotating on a schedule
//	backrot daemon start
//
//	# Recent run history
//	backrot status
package main

func main() {
	Execute()
}
