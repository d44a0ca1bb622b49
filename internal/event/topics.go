package event

import "github.com/dshills/gemview/internal/event/topic"

// Command topics.
const (
	TopicOpen             topic.Topic = "open"
	TopicOpenPrompt       topic.Topic = "open.prompt"
	TopicNavigateBack     topic.Topic = "navigate.back"
	TopicNavigateForward  topic.Topic = "navigate.forward"
	TopicNavigateParent   topic.Topic = "navigate.parent"
	TopicNavigateRoot     topic.Topic = "navigate.root"
	TopicInputPrompt      topic.Topic = "input.prompt"
	TopicMessage          topic.Topic = "message.show"
	TopicPrefsChanged     topic.Topic = "prefs.changed"
	TopicHoverLinkToggle  topic.Topic = "prefs.hoverlink.toggle"
	TopicDocumentChanged  topic.Topic = "document.changed"
	TopicReload           topic.Topic = "document.reload"
	TopicSave             topic.Topic = "document.save"
	TopicStop             topic.Topic = "document.stop"
	TopicLinkKeys         topic.Topic = "document.linkkeys"
	TopicRequestStarted   topic.Topic = "document.request.started"
	TopicRequestUpdated   topic.Topic = "document.request.updated"
	TopicRequestFinished  topic.Topic = "document.request.finished"
	TopicScrollTop        topic.Topic = "scroll.top"
	TopicScrollBottom     topic.Topic = "scroll.bottom"
	TopicScrollStep       topic.Topic = "scroll.step"
	TopicScrollPage       topic.Topic = "scroll.page"
	TopicScrollFullPage   topic.Topic = "scroll.fullpage"
	TopicFind             topic.Topic = "find.open"
	TopicZoomDelta        topic.Topic = "zoom.delta"
	TopicZoomSet          topic.Topic = "zoom.set"
	TopicMediaUpdated     topic.Topic = "media.updated"
	TopicMediaFinished    topic.Topic = "media.finished"
	TopicMediaRefresh     topic.Topic = "media.refresh"
	TopicMediaPlayerStart topic.Topic = "media.player.started"
	TopicTabNew           topic.Topic = "tab.new"
	TopicTabClose         topic.Topic = "tab.close"
	TopicTabDuplicate     topic.Topic = "tab.duplicate"
	TopicTabNext          topic.Topic = "tab.next"
	TopicTabPrev          topic.Topic = "tab.prev"
	TopicSidebarToggle    topic.Topic = "sidebar.toggle"
	TopicQuit             topic.Topic = "app.quit"
)
