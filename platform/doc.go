// Package platform holds the few OS facilities msiflow needs outside the
// installer engine itself.
//
// # Features
//
//   - Elevation: report whether the process runs with administrator rights
//   - Single Instance: serialize engine operations started by msiflow
//
// Windows uses the process token and a named mutex. Unix systems use the
// effective user ID and an advisory file lock.
package platform
