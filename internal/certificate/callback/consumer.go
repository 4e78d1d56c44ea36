package callback

import (
	"context"
	"errors"
	"log/slog"

	"certifier/internal/certificate/models"
	"certifier/internal/platform/kafka/consumer"
)

// MessageHandler feeds the callback topic into the Reconciler.
//
// Offsets are committed for applied callbacks and for callbacks that can
// never apply (malformed, unmatched, wrong state). Other failures are
// returned so the consumer retries the message.
type MessageHandler struct {
	reconciler *Reconciler
	logger     *slog.Logger
}

func NewMessageHandler(reconciler *Reconciler, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{reconciler: reconciler, logger: logger}
}

var _ consumer.Handler = (*MessageHandler)(nil)

func (h *MessageHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	n, err := DecodeEnvelope(msg.Value)
	if err != nil {
		h.logger.ErrorContext(ctx, "dropping malformed callback message",
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	_, err = h.reconciler.Apply(ctx, n)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrRecordNotFound), errors.Is(err, models.ErrInvalidState):
		// Already logged as critical by the reconciler.
		return nil
	default:
		h.logger.WarnContext(ctx, "callback apply failed, will retry",
			"external_key", n.ExternalKey,
			"offset", msg.Offset,
			"error", err,
		)
		return err
	}
}

// Reply is the response body of POST /update_certificate.
type Reply struct {
	ReturnCode int    `json:"return_code"`
	Content    string `json:"content,omitempty"`
}

// ReplyFor maps an Apply result to the pipeline's reply contract.
func ReplyFor(err error) (Reply, bool) {
	switch {
	case err == nil:
		return Reply{ReturnCode: 0}, true
	case errors.Is(err, models.ErrRecordNotFound):
		return Reply{ReturnCode: 1, Content: "unable to lookup key"}, true
	case errors.Is(err, models.ErrInvalidState):
		return Reply{ReturnCode: 1, Content: "invalid cert status"}, true
	default:
		return Reply{}, false
	}
}
