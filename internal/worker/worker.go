package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/generator"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/metrics"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/scheduler"
)

// Decision 是处理完一条消息后对它的处理方式
type Decision string

const (
	Ack     Decision = "acked"
	Reject  Decision = "rejected" // 不再重新入队
	Requeue Decision = "requeued"
)

type Generator interface {
	Generate(ctx context.Context, req generator.Request) (*generator.Outcome, error)
}

// Processor 处理排班生成任务，与具体的消息队列无关
type Processor struct {
	generator Generator
	metrics   metrics.Recorder
	logger    *slog.Logger
}

func NewProcessor(gen Generator, recorder metrics.Recorder, logger *slog.Logger) *Processor {
	if recorder == nil {
		recorder = metrics.NewNop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{generator: gen, metrics: recorder, logger: logger}
}

// Handle 处理一条消息，redelivered 表示这条消息之前已经被重新入队过
func (p *Processor) Handle(ctx context.Context, body []byte, redelivered bool) Decision {
	decision := p.handle(ctx, body, redelivered)
	p.metrics.ObserveJob(string(decision))
	return decision
}

func (p *Processor) handle(ctx context.Context, body []byte, redelivered bool) Decision {
	job := domain.GenerationJob{}
	if err := json.Unmarshal(body, &job); err != nil {
		p.logger.Error("任务反序列化失败", "error", err)
		return Reject
	}

	outcome, err := p.generator.Generate(ctx, generator.Request{
		RosterID:       job.RosterID,
		OtherRosterIDs: job.OtherRosterIDs,
		Persist:        job.Persist,
	})
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows),
			errors.Is(err, scheduler.ErrConfiguration),
			errors.Is(err, scheduler.ErrUnderstaffed),
			errors.Is(err, scheduler.ErrInvariantViolation):
			// 重试也不会成功
			p.logger.Error("排班生成任务失败", "jobID", job.ID, "rosterID", job.RosterID, "error", err)
			return Reject
		case redelivered:
			p.logger.Error("排班生成任务重试后仍然失败", "jobID", job.ID, "rosterID", job.RosterID, "error", err)
			return Reject
		default:
			p.logger.Warn("排班生成任务失败，将重新入队", "jobID", job.ID, "rosterID", job.RosterID, "error", err)
			return Requeue
		}
	}

	p.logger.Info("排班生成任务完成", "jobID", job.ID, "rosterID", job.RosterID, "persisted", outcome.Persisted, "shortfalls", len(outcome.Result.Shortfalls))
	return Ack
}
