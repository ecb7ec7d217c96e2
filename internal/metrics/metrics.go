package metrics

import (
	"time"
)

// 排班生成的结果分类
const (
	ResultSuccess       = "success"
	ResultUnderstaffed  = "understaffed"
	ResultConfiguration = "configuration_error"
	ResultError         = "error"
)

// Recorder 记录排班生成相关的指标
type Recorder interface {
	ObserveGeneration(result string, duration time.Duration)
	ObserveCacheLookup(hit bool)
	AddShortfalls(count int)
	ObserveJob(outcome string)
}

// Nop 丢弃所有指标，测试和命令行工具使用
type Nop struct{}

var _ Recorder = Nop{}

func NewNop() Nop {
	return Nop{}
}

func (Nop) ObserveGeneration(string, time.Duration) {}

func (Nop) ObserveCacheLookup(bool) {}

func (Nop) AddShortfalls(int) {}

func (Nop) ObserveJob(string) {}
