package video

import (
	"context"
	"fmt"
	"strings"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/logging"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/messaging"
)

// AudioMediaEncodedMessage 编码服务回传结果的消息类型
const AudioMediaEncodedMessage = "video.audio_media.encoded"

// AudioMediaEncoded 编码结果载荷；resource_id 与上传事件相同，形如 "<video id>.<kind>"
type AudioMediaEncoded struct {
	ResourceID      string `json:"resource_id"`
	Status          string `json:"status"`
	EncodedLocation string `json:"encoded_location"`
}

// EncodingResultHandler 把编码结果交给 ProcessMedia
type EncodingResultHandler struct {
	svc    *Service
	logger logging.Logger
}

var _ messaging.IMessageHandler = (*EncodingResultHandler)(nil)

func NewEncodingResultHandler(svc *Service, logger logging.Logger) *EncodingResultHandler {
	return &EncodingResultHandler{svc: svc, logger: logging.OrDefault(logger).WithFields(logging.String("handler", "video.encoding"))}
}

func (h *EncodingResultHandler) Type() string { return "video.encoding_result" }

func (h *EncodingResultHandler) Handle(ctx context.Context, msg messaging.IMessage) error {
	var payload AudioMediaEncoded
	if err := messaging.DecodePayload(msg, &payload); err != nil {
		return err
	}
	videoID, kind, ok := strings.Cut(payload.ResourceID, ".")
	if !ok {
		return fmt.Errorf("invalid resource_id: %q", payload.ResourceID)
	}
	out, err := h.svc.ProcessMedia(ctx, ProcessMediaInput{
		VideoID:         videoID,
		Kind:            kind,
		Status:          payload.Status,
		EncodedLocation: payload.EncodedLocation,
	})
	if err != nil {
		return err
	}
	h.logger.Info(ctx, "media encoding result applied",
		logging.String("video_id", videoID),
		logging.String("kind", kind),
		logging.String("status", payload.Status),
		logging.Bool("published", out.IsPublished))
	return nil
}
