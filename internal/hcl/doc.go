// Package hcl implements config.Loader for release specifications written in
// HCL. An embedded default specification describes the international
// release layout; user documents are merged over it in the order given.
//
// A document holds one or more release blocks:
//
//	release {
//	  product = "InternationalRF2"
//	  content "Terminology" {
//	    file "Description" {
//	      header       = ["id", "effectiveTime", "active", "moduleId", ...]
//	      dependencies = ["conceptId", "typeId"]
//	      exclude {
//	        typeId = "900000000000550004"
//	      }
//	    }
//	  }
//	}
package hcl
