package consumer

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/DSI-VEDEM/CONGE-sub001/internal/bootstrap"
	"github.com/DSI-VEDEM/CONGE-sub001/internal/events"
)

// ConsumeLeaveDecisions feeds every decision ledger event into the audit
// sink. Malformed payloads are committed and skipped so a bad message never
// wedges the partition.
func ConsumeLeaveDecisions(
	ctx context.Context,
	reader *kafkago.Reader,
	auditLogger bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_decision")
	log.Info("leave decision consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave decision consumer stopped")
				return
			}
			log.Error("fetch leave decision message failed", zap.Error(err))
			continue
		}

		var event events.LeaveDecisionRecordedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave decision event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		auditLogger.Log(ctx, bootstrap.AuditLog{
			Action:  "LEAVE_DECISION_RECORDED",
			Message: "Decision recorded on leave request " + event.Reference,
			Meta: map[string]any{
				"leave_request_id": event.LeaveRequestID,
				"reference":        event.Reference,
				"employee_id":      event.EmployeeID,
				"actor_id":         event.ActorID,
				"decision_type":    event.DecisionType,
				"request_status":   event.RequestStatus,
				"occurred_at":      event.OccurredAt,
			},
		})

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave decision message failed", zap.Error(err))
			continue
		}

		log.Info("leave decision audited",
			zap.String("leave_request_id", event.LeaveRequestID),
			zap.String("decision_type", event.DecisionType),
		)
	}
}
