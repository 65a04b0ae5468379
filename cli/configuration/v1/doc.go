// Package v1 defines the YAML profile of the simple-c2pa command.
//
// A profile preconfigures the application that appears in the claim
// generator, the certificates created on the fly and the assertions added
// to every signed file:
//
//	application:
//	  name: ProofMode
//	  version: 2.1.0
//	certificate:
//	  organization: Guardian Project
//	  validityDays: 30
//	assertions:
//	  created: true
//	  website: https://guardianproject.info
//	  aiTraining: restricted
//	  json:
//	    org.example.note: {"reviewed": true}
package v1
