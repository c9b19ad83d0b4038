package auth

import (
	"github.com/marisa-playground/labeling-service/internal/models"
)

// Operation — именованная операция API. Маршруты объявляют операцию,
// middleware сверяет её с таблицей политик вместо разрозненных проверок роли.
type Operation string

const (
	OpPoolCreate        Operation = "pool.create"
	OpPoolList          Operation = "pool.list"
	OpPoolGet           Operation = "pool.get"
	OpQuestionCreate    Operation = "question.create"
	OpQuestionList      Operation = "question.list"
	OpPoolIngest        Operation = "pool.ingest"
	OpTaskNext          Operation = "task.next"
	OpEvaluationRecord  Operation = "evaluation.record"
	OpPoolMetrics       Operation = "pool.metrics"
	OpTaskList          Operation = "task.list"
	OpTaskDetail        Operation = "task.detail"
	OpTaskConsolidate   Operation = "task.consolidate"
	OpTaskDeconsolidate Operation = "task.deconsolidate"
	OpTaskMetrics       Operation = "task.metrics"
	OpPoolExport        Operation = "pool.export"
	OpUserCreate        Operation = "user.create"
)

// policy — единая таблица "роль → разрешённые операции".
var policy = map[models.Role]map[Operation]bool{
	models.RoleAdmin: {
		OpPoolCreate:        true,
		OpPoolList:          true,
		OpPoolGet:           true,
		OpQuestionCreate:    true,
		OpQuestionList:      true,
		OpPoolIngest:        true,
		OpTaskNext:          true,
		OpEvaluationRecord:  true,
		OpPoolMetrics:       true,
		OpTaskList:          true,
		OpTaskDetail:        true,
		OpTaskConsolidate:   true,
		OpTaskDeconsolidate: true,
		OpTaskMetrics:       true,
		OpPoolExport:        true,
		OpUserCreate:        true,
	},
	models.RoleWorker: {
		OpPoolList:         true,
		OpPoolGet:          true,
		OpQuestionList:     true,
		OpTaskNext:         true,
		OpEvaluationRecord: true,
		OpPoolMetrics:      true,
	},
}

// Allowed сообщает, разрешена ли операция для роли. Неизвестная роль или
// операция — запрет.
func Allowed(role string, op Operation) bool {
	perms, ok := policy[models.Role(role)]
	if !ok {
		return false
	}
	return perms[op]
}
