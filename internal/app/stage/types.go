package stage

type Options struct {
	// PruneStale deletes files staged by a previous run that no longer
	// exist in the checkout. Off by default: the execution root only ever
	// gains or overwrites files.
	PruneStale bool
}
