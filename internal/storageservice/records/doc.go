// Package records defines the typed storage records exchanged with the
// remote store, the type-tagged identifiers under which they are stored,
// and the manifest that lists the current identifiers.
//
// Fields whose absence is meaningful to merging are pointers or nil-able
// byte slices. UnknownFields carries raw wire bytes this version does not
// understand and must be re-attached to every record built from it.
package records
