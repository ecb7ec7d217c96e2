package domain

type Role string

const (
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
)
