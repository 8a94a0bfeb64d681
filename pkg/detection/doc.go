// Package detection reads the object labels the detection pipeline recorded
// for each footage file.
//
// The pipeline writes one JSON sidecar per day folder, mapping file base
// names to the labels seen in them:
//
//	{"120000.mp4": ["person", "car"], "121500.mp4": []}
//
// A file missing from the sidecar, or in a folder whose sidecar is missing or
// malformed, has not been analyzed. An empty label list means it was analyzed
// and nothing was found.
package detection
