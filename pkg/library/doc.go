// Package library loads requirement and test case documents into an
// immutable, stabilized snapshot.
//
// # Overview
//
// Loading runs in two phases:
//
//  1. The Loader enumerates every candidate document once and parses them in
//     repeated passes. A document whose parent is not loaded yet is retried on
//     the next pass; loading stops when everything resolved or a pass made no
//     progress. Leftovers are reported together in a *DocfilesError, duplicate
//     ids abort immediately with a *CollisionError.
//  2. Stabilize recomputes derived attributes until every record reports a
//     final state or no further progress is possible.
//
// # Usage Example
//
//	lib, err := library.New(ctx, []string{"./tests"},
//		library.WithLogger(log),
//		library.WithWorkers(4),
//	)
//	if err != nil {
//		var docErr *library.DocfilesError
//		if errors.As(err, &docErr) {
//			for _, doc := range docErr.Documents {
//				fmt.Printf("%s: %s\n", doc, docErr.Diagnostics[doc])
//			}
//		}
//		return err
//	}
//
//	for _, id := range lib.IDs(structures.TestCases) {
//		tc, _ := lib.TestCase(id)
//		fmt.Println(tc.ID(), tc.Verifies())
//	}
package library
