package syncer

// Mode is the kind of synchronization run, resolved exactly once per run and
// used for every downstream decision of that run.
type Mode string

const (
	// ModeInitial targets all submitted products of a shop that never
	// completed a sync.
	ModeInitial Mode = "initial"
	// ModeIncremental targets only submitted products without outgoing edges.
	ModeIncremental Mode = "incremental"
	// ModeRefresh wipes the shop's edges and regenerates for all submitted
	// products.
	ModeRefresh Mode = "refresh"
)

// ModeHintRefresh is the only caller hint that changes the resolved mode;
// everything else behaves like "auto".
const ModeHintRefresh = "refresh"

// ResolveMode decides the run's mode. A shop that never completed its initial
// sync always resolves to initial, regardless of hints. Past the initial
// sync, an explicit refresh hint or the legacy regenerate flag resolves to
// refresh, the default is incremental.
func ResolveMode(initialSyncDone bool, hint string, regenerate bool) Mode {
	if !initialSyncDone {
		return ModeInitial
	}
	if hint == ModeHintRefresh || regenerate {
		return ModeRefresh
	}
	return ModeIncremental
}
