package utils

import "runtime/debug"

// unknownVersion is reported when no build metadata is available.
const unknownVersion = "unknown"

// GetApplicationVersion returns the module version recorded in build info.
func GetApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		return buildInfo.Main.Version
	}
	return unknownVersion
}
