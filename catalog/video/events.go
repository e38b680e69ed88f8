package video

import (
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/eventing"
)

const (
	CreatedEventType            = "VideoCreated"
	AudioMediaReplacedEventType = "VideoAudioMediaReplaced"
	MediaStatusChangedEventType = "AudioVideoMediaStatusChanged"
)

// AudioMediaUploadedIntegrationEvent 通知编码服务处理新上传的媒体
const AudioMediaUploadedIntegrationEvent = "video.audio_media.uploaded"

// IntegrationEvents 本包发布的全部集成事件名
var IntegrationEvents = []string{AudioMediaUploadedIntegrationEvent}

// Created 视频已创建
type Created struct {
	eventing.DomainEvent
	Title string
}

// AudioMediaReplaced 某个媒体槽位被替换为新上传的文件
type AudioMediaReplaced struct {
	eventing.DomainEvent
	Kind  MediaKind
	Media AudioVideoMedia
}

// AudioMediaUploaded 集成事件载荷
type AudioMediaUploaded struct {
	ResourceID string `json:"resource_id"`
	FilePath   string `json:"file_path"`
}

// IntegrationEvent resource_id 形如 "<video id>.<kind>"
func (e AudioMediaReplaced) IntegrationEvent() eventing.IIntegrationEvent {
	return eventing.NewIntegrationEvent(AudioMediaUploadedIntegrationEvent, e, AudioMediaUploaded{
		ResourceID: e.AggregateID() + "." + string(e.Kind),
		FilePath:   e.Media.RawLocation(),
	})
}

// MediaStatusChanged 编码状态变化
type MediaStatusChanged struct {
	eventing.DomainEvent
	Kind            MediaKind
	Status          MediaStatus
	EncodedLocation *string
}
