// Where: internal/version/version.go
// What: Version information retrieval.
// Why: Report the release tag or VCS revision the binary was built from.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/emarketeer/em-commons/internal/meta"
)

// Version is set at release time via -ldflags "-X .../internal/version.Version=v1.2.3".
var Version = ""

var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the release version when stamped, otherwise the short VCS
// revision (with "(dirty)" for modified trees), otherwise "dev".
func GetVersion() string {
	if v := strings.TrimSpace(Version); v != "" {
		return v
	}
	info, ok := readBuildInfo()
	if !ok {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}

	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
			if len(revision) > 7 {
				revision = revision[:7]
			}
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return "dev"
	}
	if modified {
		return fmt.Sprintf("%s (dirty)", revision)
	}
	return revision
}

// String returns the version line printed by --version.
func String() string {
	return fmt.Sprintf("%s %s", meta.AppName, GetVersion())
}
