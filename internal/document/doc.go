// Package document implements the view of one tab: it fetches a URL,
// integrates the response into a laid-out document as it streams in, and
// paints the visible part through a tile cache.
//
// A View is owned by the UI goroutine. Network requests run on their own
// goroutines and only post commands to the event queue; the view picks the
// data up when the command is handled.
//
// Paint order for a frame:
//
//  1. Reposition the tile cache over the visible range
//  2. Render the tile ranges that are not valid
//  3. Redraw individually marked runs
//  4. Composite the tiles onto the target
//  5. Draw media controls and the hover URL on top
package document
