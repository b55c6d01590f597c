package core

// ArtifactStore defines the interface for artifact persistence. Artifacts are
// the documents a run produces (call prep briefs, proposals), scoped by run
// identifier. Implementations must be thread-safe. Short method names
// (Save/Get/List/Delete) mirror other store interfaces for consistency.
type ArtifactStore interface {
	Save(runID, name string, data []byte) error
	Get(runID, name string) ([]byte, error)
	List(runID string) ([]string, error)
	Delete(runID, name string) error
}
