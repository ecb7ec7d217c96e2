package domain

// GenerationJob 是投递到消息队列中的排班生成任务
type GenerationJob struct {
	ID             string  `json:"id"`
	RosterID       int64   `json:"rosterID"`
	OtherRosterIDs []int64 `json:"otherRosterIDs"`
	Persist        bool    `json:"persist"`
}
