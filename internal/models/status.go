package models

// Status - состояние обращения в жизненном цикле
type Status string

const (
	StatusPending    Status = "Pending"
	StatusVerified   Status = "Verified"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusRejected   Status = "Rejected"
)

// Statuses перечисляет все состояния в порядке жизненного цикла
var Statuses = []Status{
	StatusPending,
	StatusVerified,
	StatusInProgress,
	StatusResolved,
	StatusRejected,
}

// transitions - ориентированный граф допустимых переходов.
// Resolved и Rejected терминальные.
var transitions = map[Status][]Status{
	StatusPending:    {StatusVerified, StatusRejected},
	StatusVerified:   {StatusInProgress, StatusRejected},
	StatusInProgress: {StatusResolved},
}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal сообщает, что из состояния нет исходящих переходов
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransition - тотальная функция перехода: true только для рёбер графа
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses возвращает состояния, достижимые за один переход
func NextStatuses(from Status) []Status {
	next := make([]Status, len(transitions[from]))
	copy(next, transitions[from])
	return next
}
