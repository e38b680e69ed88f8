package video

import (
	"fmt"
	"slices"
	"unicode/utf8"
)

// MediaKind 媒体槽位
type MediaKind string

const (
	Trailer   MediaKind = "trailer"
	VideoFile MediaKind = "video"
)

// MediaKinds 全部槽位
var MediaKinds = []MediaKind{Trailer, VideoFile}

// ParseMediaKind 解析槽位名
func ParseMediaKind(s string) (MediaKind, error) {
	k := MediaKind(s)
	if !slices.Contains(MediaKinds, k) {
		return "", fmt.Errorf("invalid media kind: %s", s)
	}
	return k, nil
}

// MediaStatus 编码状态
type MediaStatus string

const (
	Pending    MediaStatus = "pending"
	Processing MediaStatus = "processing"
	Completed  MediaStatus = "completed"
	Failed     MediaStatus = "failed"
)

// ParseMediaStatus 解析编码状态
func ParseMediaStatus(s string) (MediaStatus, error) {
	switch st := MediaStatus(s); st {
	case Pending, Processing, Completed, Failed:
		return st, nil
	default:
		return "", fmt.Errorf("invalid media status: %s", s)
	}
}

// AudioVideoMedia 音视频媒体值对象，变更返回新值
type AudioVideoMedia struct {
	name            string
	rawLocation     string
	encodedLocation *string
	status          MediaStatus
}

// NewAudioVideoMedia 新上传的媒体，状态为 pending
func NewAudioVideoMedia(name, rawLocation string) AudioVideoMedia {
	return AudioVideoMedia{name: name, rawLocation: rawLocation, status: Pending}
}

// RestoreAudioVideoMedia 从存储重建
func RestoreAudioVideoMedia(name, rawLocation string, encodedLocation *string, status MediaStatus) AudioVideoMedia {
	return AudioVideoMedia{name: name, rawLocation: rawLocation, encodedLocation: encodedLocation, status: status}
}

func (m AudioVideoMedia) Name() string             { return m.name }
func (m AudioVideoMedia) RawLocation() string      { return m.rawLocation }
func (m AudioVideoMedia) EncodedLocation() *string { return m.encodedLocation }
func (m AudioVideoMedia) Status() MediaStatus      { return m.status }

// Process 进入编码中
func (m AudioVideoMedia) Process() AudioVideoMedia {
	m.status = Processing
	return m
}

// Complete 编码完成
func (m AudioVideoMedia) Complete(encodedLocation string) AudioVideoMedia {
	m.status = Completed
	m.encodedLocation = &encodedLocation
	return m
}

// Fail 编码失败
func (m AudioVideoMedia) Fail() AudioVideoMedia {
	m.status = Failed
	m.encodedLocation = nil
	return m
}

func (m AudioVideoMedia) validate(kind MediaKind) []string {
	var out []string
	if m.name == "" {
		out = append(out, fmt.Sprintf("%s name should not be empty", kind))
	}
	if utf8.RuneCountInString(m.name) > 255 {
		out = append(out, fmt.Sprintf("%s name must be shorter than or equal to 255 characters", kind))
	}
	if m.rawLocation == "" {
		out = append(out, fmt.Sprintf("%s raw_location should not be empty", kind))
	}
	return out
}
