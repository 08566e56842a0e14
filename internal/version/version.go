// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Magnitude index, catalog watcher, Prometheus frame metrics
// 0.2.0 - Terminal sky view, headless render, observer zenith pointing
// 0.1.0 - Initial release: STARS.DAT reader, zenithal projection, seed catalog
