// Package diff compares two library snapshots.
//
// For every category the ids of both snapshots are partitioned into removed,
// added, changed and unchanged records. A record is changed when it exists in
// both snapshots but its Equal method reports a difference; the document it
// was loaded from is not compared, so moving a file does not change a record.
//
//	report := diff.Diff(previous, current)
//	for _, category := range structures.Categories() {
//		fmt.Println(category, report.Category(category).Changed)
//	}
//
// A nil old snapshot is treated as empty, which makes every record added.
package diff
