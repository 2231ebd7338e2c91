package updater

// MergeStatus is the outcome of merging one record.
type MergeStatus int

const (
	// MergeStatusInvalid means the record can never be merged and should
	// be deleted from the remote store.
	MergeStatusInvalid MergeStatus = iota
	// MergeStatusMerged means the record was applied to local state.
	MergeStatusMerged
)

func (s MergeStatus) String() string {
	if s == MergeStatusMerged {
		return "merged"
	}
	return "invalid"
}

// MergeResult is returned by every MergeRecord call. When NeedsUpdate is
// set, local state differs from the merged record and ID should be
// scheduled for upload.
type MergeResult[ID any] struct {
	Status      MergeStatus
	NeedsUpdate bool
	ID          ID
}

func Invalid[ID any]() MergeResult[ID] {
	return MergeResult[ID]{Status: MergeStatusInvalid}
}

func Merged[ID any](needsUpdate bool, id ID) MergeResult[ID] {
	return MergeResult[ID]{Status: MergeStatusMerged, NeedsUpdate: needsUpdate, ID: id}
}

func (r MergeResult[ID]) IsInvalid() bool {
	return r.Status == MergeStatusInvalid
}
