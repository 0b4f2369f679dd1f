package analysis

// BugLink records that a bug-fixing commit was traced back to the
// commits that introduced the defect it fixes.
type BugLink struct {
	// BuggyCommit is the hash of the corrective commit the linker
	// started from. The field name follows the linker's output.
	BuggyCommit string

	// LinkedTo holds the hashes of the commits identified as having
	// introduced the defect.
	LinkedTo []string
}
