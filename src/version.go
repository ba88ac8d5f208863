package firefly

import (
	"runtime/debug"
	"strconv"
)

// Set at build time via `-ldflags "-X 'github.com/lampyrid/firefly/src.FIREFLY_VERSION=X'"`
var FIREFLY_VERSION string

func getBuildSettingOrDefault(bi *debug.BuildInfo, key string, defaultValue string) string {
	if bi == nil {
		return defaultValue
	}

	for _, bs := range bi.Settings {
		if bs.Key == key {
			return bs.Value
		}
	}

	return defaultValue
}

func printVersion() {
	var buildInfo, _ = debug.ReadBuildInfo()

	var buildTimeStr = getBuildSettingOrDefault(buildInfo, "vcs.time", "UNKNOWN")

	var (
		buildCommit   = getBuildSettingOrDefault(buildInfo, "vcs.revision", "UNKNOWN")
		buildDirtyStr = getBuildSettingOrDefault(buildInfo, "vcs.modified", "false")
		buildDirty, _ = strconv.ParseBool(buildDirtyStr)
	)

	if buildDirty {
		buildCommit += "-DIRTY"
	}

	var version = FIREFLY_VERSION
	if version == "" {
		version = "!UNKNOWN!"
	}

	dw_printf("Firefly - Version %s (revision %s, built at %s)\n", version, buildCommit, buildTimeStr)
}
