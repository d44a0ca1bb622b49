// Package event carries commands between the network workers, timers and
// the single UI goroutine.
//
// Commands are posted from any goroutine with Post and delivered on the UI
// loop by Dispatch, in posting order, to every handler whose pattern
// matches the command topic. A command carries its arguments as
// space-separated name:value pairs, for example
//
//	open redirect:1 url:gemini://example.org/
//
// A "url:" argument, when present, is always last and runs to the end of
// the string.
package event
