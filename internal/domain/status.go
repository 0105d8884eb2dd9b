package domain

type CheckoutState string

const (
	CheckoutAbsent  CheckoutState = "ABSENT"
	CheckoutPresent CheckoutState = "PRESENT"
)

type CheckoutStatus struct {
	Path      string
	State     CheckoutState
	RemoteURL string
	HeadHash  string
	Shallow   bool
}

type SyncAction string

const (
	SyncCloned   SyncAction = "cloned"
	SyncPulled   SyncAction = "pulled"
	SyncUpToDate SyncAction = "up_to_date"
)

type SyncResult struct {
	Path     string
	State    CheckoutState
	Action   SyncAction
	HeadHash string
}

type StageReport struct {
	Source    string
	Target    string
	Skipped   bool
	Copied    int
	Unchanged int
	Pruned    int
}

// StagingManifestName is written to the execution root and lists the files
// staged by the last run.
const StagingManifestName = ".edgeboot-staged.json"

type CopyResult struct {
	Files     []string
	Copied    int
	Unchanged int
}
