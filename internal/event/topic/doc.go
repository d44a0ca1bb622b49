// Package topic provides the dot-separated command names posted on the UI
// queue and the wildcard patterns subscribers use to select them.
//
//	document.request.updated
//	media.player.started
//
// "*" matches exactly one segment and "**" matches zero or more:
//
//	document.*       matches document.changed, not document.request.started
//	document.**      matches both
//	**.started       matches media.player.started, document.request.started
package topic
