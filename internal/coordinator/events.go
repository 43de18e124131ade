package coordinator

// Event is the tagged union of inbound behavioral signals. Collaborators
// (extension content scripts, the CLI fallback path) produce these; the
// coordinator's dispatch loop is the single ingestion point.
type Event interface {
	isEvent()
}

// TabCreated reports a new browser tab.
type TabCreated struct {
	TabID int `json:"tabId"`
}

// TabSwitched reports a foreground-tab change. PreviousTabID is zero when
// unknown.
type TabSwitched struct {
	TabID         int `json:"tabId"`
	PreviousTabID int `json:"previousTabId"`
}

// VideoActivity reports accumulated video watching since the last report.
type VideoActivity struct {
	VideosWatched    int     `json:"videosWatched"`
	TimeSpentSeconds float64 `json:"timeSpent"`
	IsBinge          bool    `json:"isBinge"`
}

// UserInteraction reports a click or scroll burst. Informational only:
// counted for diagnostics, excluded from scoring.
type UserInteraction struct {
	Kind   string  `json:"kind"`
	Weight float64 `json:"weight"`
	Domain string  `json:"domain"`
}

// StartBreak asks for a break countdown of the given length.
type StartBreak struct {
	Minutes int `json:"duration"`
}

func (TabCreated) isEvent()      {}
func (TabSwitched) isEvent()     {}
func (VideoActivity) isEvent()   {}
func (UserInteraction) isEvent() {}
func (StartBreak) isEvent()      {}
