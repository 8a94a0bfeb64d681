// Package sizecache keeps the aggregate size of each day folder.
//
// Summing a folder means a stat per file, which is too slow to repeat for the
// whole archive on every run. The Cache therefore persists each folder's size
// through a Store (by default a small sidecar file inside the folder) and
// trusts it until Invalidate is called. Callers that delete files from a
// folder must call Invalidate before reading the size again.
//
// Sizes are reported in GB, where one GB is 1024^3 bytes.
package sizecache
