package storage

const (
	RoleEmployee   = "EMPLOYEE"
	RoleManager    = "MANAGER"
	RoleAccountant = "ACCOUNTANT"
)

type User struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Role    string `json:"role"`
}
