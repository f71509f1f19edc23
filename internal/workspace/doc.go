// Package workspace owns the scratch directory used for transient artifacts.
//
// A Workspace is rooted at the configured work directory. Each session
// acquires an Area: a private subdirectory guarded by an advisory file lock
// so two processes never share it. Areas hand out Artifacts, uniquely named
// files that callers release once they have consumed them. Closing an Area
// removes everything it still holds.
package workspace
