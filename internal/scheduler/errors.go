package scheduler

import (
	"errors"
	"fmt"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
)

var (
	ErrConfiguration      = errors.New("排班配置错误")
	ErrUnderstaffed       = errors.New("可用人数不足")
	ErrInvariantViolation = errors.New("排班引擎内部错误")
)

// ConfigurationError 表示排班配置本身不合法，整个生成请求都会被拒绝
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func configError(field string, format string, args ...any) error {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// UnderstaffedError 仅在 strict 策略下返回
type UnderstaffedError struct {
	Date        domain.Date
	Requirement int
	Required    int
	Available   int
}

func (e *UnderstaffedError) Error() string {
	return fmt.Sprintf("%s 的第 %d 项军衔要求需要 %d 人，但只有 %d 人可用", e.Date, e.Requirement+1, e.Required, e.Available)
}

func (e *UnderstaffedError) Is(target error) bool {
	return target == ErrUnderstaffed
}

// InvariantViolationError 说明筛选或排序逻辑存在 bug，不应该展示给最终用户
type InvariantViolationError struct {
	Date      domain.Date
	SoldierID int64
	Message   string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("%s 士兵 %d: %s", e.Date, e.SoldierID, e.Message)
}

func (e *InvariantViolationError) Is(target error) bool {
	return target == ErrInvariantViolation
}
