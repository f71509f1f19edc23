package workspace

// SetStatfs replaces the filesystem probe.
func SetStatfs(w *Workspace, fn func(string) (uint64, uint64, error)) {
	w.statfs = fn
}
