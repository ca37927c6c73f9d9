// Package directory owns the User records of the library together with their borrowed ISBN references.
//
// The references are lookup keys into the catalog only. A Store never resolves them itself,
// VerifyReferences checks them against a catalog lookup supplied by the caller.
package directory
