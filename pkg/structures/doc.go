// Package structures defines the records tclib indexes and the parsers that
// build them from YAML documents.
//
// # Overview
//
// Two record kinds exist: requirements (*.req.yaml) and test cases
// (*.tc.yaml). Both may name a parent of their own kind and inherit
// attributes from it; test cases may additionally reference the requirements
// they verify.
//
// A parser receives a read-only Lookup over the records loaded so far. When a
// referenced record is not there yet the parser returns an *UnknownParentError,
// which matches ErrUnknownParent and tells the loader to retry the document on
// a later pass.
//
// # Derived attributes
//
// Inherited values are not computed at parse time. Each record exposes
// Stabilize, which recomputes the derived part from its parent and reports
// whether the parent was already final:
//
//	for !record.Stabilize() {
//		// parent not stable yet, try again on the next pass
//	}
//
// # Example documents
//
//	# login.req.yaml
//	name: REQ-LOGIN
//	parent: REQ-AUTH
//	priority: high
//	tags: [security]
//
//	# login-basic.tc.yaml
//	name: TC-LOGIN-BASIC
//	verifies: [REQ-LOGIN]
//	instructions:
//	  steps:
//	    - open the login page
//	    - submit valid credentials
package structures
