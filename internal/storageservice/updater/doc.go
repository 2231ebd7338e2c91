// Package updater is the storage record merge engine.
//
// Each record kind has an Updater that can build the record a device should
// upload for one local entity, and merge a record downloaded from the
// remote store into local state. Merging follows one policy throughout:
// the remote value wins for plain settings, except that a value the local
// side holds but the remote record omits is never cleared; instead the
// merge reports NeedsUpdate so the device uploads its own copy.
//
// All collaborators are injected through Deps and every call runs inside
// the caller's transaction.
package updater
