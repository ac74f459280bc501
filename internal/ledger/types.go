package ledger

// Status of a ledger entry. Partial is written before the filesystem is
// touched and flipped to Installed afterward, so an interrupted run is
// visible instead of silently half-applied.
type Status string

const (
	StatusInstalled Status = "installed"
	StatusPartial   Status = "partial"
)

// Ledger is the installed_plugins.json structure: plugin ID
// ("<plugin>@<marketplace>") to install records.
type Ledger struct {
	Version int                `json:"version"`
	Plugins map[string][]Entry `json:"plugins"`
}

// Entry is a single install record for a plugin.
type Entry struct {
	Scope       string `json:"scope"`                 // "global" or "project"
	ProjectPath string `json:"projectPath,omitempty"` // only for project scope
	Version     string `json:"version"`
	Status      Status `json:"status"`
	InstalledAt string `json:"installedAt"`
	LastUpdated string `json:"lastUpdated"`
	Source      Source `json:"source"`
	// Assets records the destination paths created per asset group, so
	// uninstall replays exactly what install did.
	Assets map[string][]string `json:"assets,omitempty"`
}

// Source records where the plugin was installed from.
type Source struct {
	Marketplace string `json:"marketplace"`
	URL         string `json:"url,omitempty"`
	Path        string `json:"path,omitempty"`
}

// AssetPaths flattens the entry's recorded destinations.
func (e Entry) AssetPaths() []string {
	var paths []string
	for _, group := range e.Assets {
		paths = append(paths, group...)
	}
	return paths
}

// SameInstallation reports whether two entries describe the same install
// slot: identity for the keyed upsert is (scope, projectPath).
func (e Entry) SameInstallation(other Entry) bool {
	return e.Scope == other.Scope && e.ProjectPath == other.ProjectPath
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		Version: 1,
		Plugins: make(map[string][]Entry),
	}
}
