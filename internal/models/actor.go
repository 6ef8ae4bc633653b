package models

// Role - роль пользователя, выданная провайдером идентификации
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Actor - уже аутентифицированный автор запроса.
// Ядро не хранит учётные данные, только читает id и роль из контекста запроса.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Authenticated сообщает, что у актора есть идентификатор и известная роль
func (a Actor) Authenticated() bool {
	return a.ID != "" && a.Role.Valid()
}

func (a Actor) IsAdmin() bool {
	return a.Authenticated() && a.Role == RoleAdmin
}
