// Package retention decides which footage to keep and removes the rest.
//
// A run works on the day folders of a flat list of video files, newest day
// first, in five phases:
//
//  1. Recent protection: the newest folders are kept untouched until their
//     sizes add up to the recent budget. The folder that crosses the budget
//     is the first historical folder.
//  2. Content filtering: every historical file whose detections contain none
//     of the target objects is removed.
//  3. Cache refresh: folders that lost files are recounted.
//  4. Historical cap: historical folders are kept, newest first, until their
//     refreshed sizes add up to the historical budget.
//  5. Eviction: the folder that crosses the historical budget and every older
//     folder are removed whole.
//
// Nothing in a run is fatal. Vanished files, corrupt sidecars and failed
// deletions are logged and the run carries on; running again converges.
//
// Engine implements the phases on a supplied file list. Runner adds
// everything around a run: listing the archive, the run lock, history,
// metrics and tracing. Scheduler triggers the Runner on a cron schedule.
package retention
