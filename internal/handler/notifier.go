package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/qianji-dev/store-scheduler/backend/internal/domain"
)

// publishNotification 把通知投递到消息队列中，由外部的通知服务负责实际送达。
// 调用时数据库的提交已经完成，投递失败只记录日志，不让请求失败。
func (h *Handler) publishNotification(r *http.Request, msgType string, data any) {
	message := domain.NotificationMessage{
		ID:   uuid.NewString(),
		Type: msgType,
		Data: data,
	}

	body, err := json.Marshal(message)
	if err != nil {
		slog.Error("无法序列化通知消息", "type", msgType, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.notifyChannel.PublishWithContext(
		ctx,
		"",
		"notification_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		slog.Error("无法投递通知消息", "type", msgType, "path", r.URL.Path, "error", err)
	}
}

// bumpReportVersion 在班次发生变化后递增门店的报表版本号，
// 让工时报表的缓存立即失效
func (h *Handler) bumpReportVersion(storeID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.Redis.OperationTimeout)*time.Second)
	defer cancel()

	if err := h.redisClient.Incr(ctx, reportVersionKey(storeID)).Err(); err != nil {
		slog.Error("无法更新报表版本号", "store_id", storeID, "error", err)
	}
}

func reportVersionKey(storeID int64) string {
	return fmt.Sprintf("report_version_store_%d", storeID)
}
