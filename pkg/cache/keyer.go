package cache

// ResultKeyOpts are the computation options that distinguish one cached
// result from another for the same snapshot.
type ResultKeyOpts struct {
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	Charts     []string `json:"charts"`
	PolicyHash string   `json:"policy_hash"`
}

// Keyer builds cache keys for the domain objects this engine caches.
type Keyer interface {
	// SnapshotKey keys a raw snapshot document by its content hash.
	SnapshotKey(hash string) string

	// ResultKey keys a computed layout result by the snapshot content hash
	// and the options that shaped the computation.
	ResultKey(snapshotHash string, opts ResultKeyOpts) string
}

// DefaultKeyer is the standard key scheme.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// SnapshotKey generates a key for snapshot document storage.
func (k *DefaultKeyer) SnapshotKey(hash string) string {
	return "snapshot:" + hash
}

// ResultKey generates a key for a computed layout result.
// Options are folded into the hash so any change recomputes.
func (k *DefaultKeyer) ResultKey(snapshotHash string, opts ResultKeyOpts) string {
	return hashKey("result", snapshotHash, opts)
}
