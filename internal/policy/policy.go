// Package policy решает, может ли актор выполнить операцию над обращением.
// Решение зависит только от аргументов: без состояния и без обращений к хранилищу.
package policy

import "github.com/shenikar/civic_issue_tracker/internal/models"

// Operation - операция над обращениями
type Operation string

const (
	OpCreate       Operation = "create"
	OpReadOne      Operation = "readOne"
	OpList         Operation = "list"
	OpUpdateStatus Operation = "updateStatus"
	OpDelete       Operation = "delete"
	OpViewStats    Operation = "viewStats"
)

type rule func(actor models.Actor, issue *models.Issue) bool

func anyAuthenticated(models.Actor, *models.Issue) bool { return true }

func adminOnly(actor models.Actor, _ *models.Issue) bool { return actor.Role == models.RoleAdmin }

func adminOrReporter(actor models.Actor, issue *models.Issue) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	return issue != nil && issue.ReportedBy == actor.ID
}

var rules = map[Operation]rule{
	OpCreate:       anyAuthenticated,
	OpReadOne:      anyAuthenticated,
	OpList:         anyAuthenticated,
	OpUpdateStatus: adminOnly,
	OpDelete:       adminOrReporter,
	OpViewStats:    adminOnly,
}

// CanPerform возвращает true, если актору разрешена операция.
// Неаутентифицированному актору и неизвестной операции всегда отказывает.
func CanPerform(actor models.Actor, op Operation, issue *models.Issue) bool {
	if !actor.Authenticated() {
		return false
	}
	allow, ok := rules[op]
	if !ok {
		return false
	}
	return allow(actor, issue)
}
