package models

// События жизненного цикла, публикуемые в RabbitMQ.

type PoolIngestedEvent struct {
	PoolID       string `json:"pool_id"`
	CreatedTasks int    `json:"created_tasks"`
	SkippedFiles int    `json:"skipped_files"`
	Timestamp    int64  `json:"timestamp"`
}

type TaskLifecycleEvent struct {
	TaskID    string `json:"task_id"`
	PoolID    string `json:"pool_id"`
	Action    string `json:"action"` // consolidated, ignored, returned_to_pipe, deconsolidated
	ActorID   string `json:"actor_id"`
	Timestamp int64  `json:"timestamp"`
}
