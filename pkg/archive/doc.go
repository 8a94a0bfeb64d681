// Package archive discovers per-day footage folders.
//
// Footage is stored as <root>/.../YYYY/MM/DD/<file>. ListVideoFiles walks the
// root and returns every footage file; ScanFolders turns such a flat list
// into the distinct day folders it touches, newest first. Folders whose last
// three path segments do not follow the YYYY/MM/DD convention are ignored.
package archive
