package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/duty-roster/backend/internal/generator"
)

func (h *Handler) GenerateRoster(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OtherRosterIDs []int64 `json:"otherRosterIDs"`
		Persist        bool    `json:"persist"`
		Async          bool    `json:"async"`
	}

	// 请求体可以为空，此时只生成当前排班表且不保存
	if err := h.readJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, r, err)
		return
	}

	roster := r.Context().Value(RosterCtx).(*domain.Roster)

	if req.Async {
		h.enqueueGeneration(w, r, roster, req.OtherRosterIDs)
		return
	}

	outcome, err := h.generator.Generate(r.Context(), generator.Request{
		RosterID:       roster.ID,
		OtherRosterIDs: req.OtherRosterIDs,
		Persist:        req.Persist,
	})
	if err != nil {
		h.generationError(w, r, err)
		return
	}

	h.successResponse(w, r, "排班生成成功", outcome)
}

// enqueueGeneration 把任务投递到消息队列，由 worker 生成并保存结果
func (h *Handler) enqueueGeneration(w http.ResponseWriter, r *http.Request, roster *domain.Roster, otherRosterIDs []int64) {
	if h.jobChannel == nil {
		h.errorResponse(w, r, "异步生成暂不可用")
		return
	}

	job := domain.GenerationJob{
		ID:             uuid.NewString(),
		RosterID:       roster.ID,
		OtherRosterIDs: otherRosterIDs,
		Persist:        true,
	}

	jobData, err := json.Marshal(job)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.jobChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.GenerationQueue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    job.ID,
			Body:         jobData,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "排班生成任务已提交", job)
}
