package handler

type ContextKey string

var (
	RoleCtxKey     ContextKey = "role"
	SubCtxKey      ContextKey = "sub"
	SoldierInfoCtx ContextKey = "soldierInfo"
	RosterCtx      ContextKey = "roster"
)
