// Package arcwalk recursively enumerates every file reachable from a starting
// filesystem path, treating archive files and single-file compression
// containers as if they were directories.
//
// Each entry discovered, whether it lives on the local filesystem or
// arbitrarily deep inside nested containers, is delivered to a caller-supplied
// [Consumer] as a display path, a lazy byte stream and a [FileAttributes]
// bundle. The same traversal can be materialised as an in-memory [FileTree].
//
// Configuration is done using [ConfigOption] values passed to [NewWalker],
// covering recursion depth, inclusion and exclusion patterns, reported file
// types, link following, the extractor set, the logger and the telemetry
// hook. Telemetry data is captured during the traversal; the collection of
// [TelemetryData] is handed to the configured hook when the walk finishes.
package arcwalk
