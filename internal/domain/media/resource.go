package media

import (
	"time"

	"github.com/parley/parley/internal/domain/uuid"
)

// Resource types, определяющие владельца ресурса.
const (
	TypeUserProfilePicture = "USER_PROFILE_PICTURE"
	TypeChatChannelAvatar  = "CHAT_CHANNEL_AVATAR"
	TypeChatChannelMessage = "CHAT_CHANNEL_MESSAGE"
)

// Resource представляет метаданные загруженного файла.
// Встраивается как денормализованный snapshot в user, channel и message,
// поэтому поля экспортированы (value object без инвариантов).
type Resource struct {
	Key         string    `bson:"key"        json:"key"`
	FileName    string    `bson:"file_name"  json:"fileName"`
	ContentType string    `bson:"content_type" json:"contentType"`
	Size        int64     `bson:"size"       json:"size"`
	Type        string    `bson:"type"       json:"type"`
	TypeID      string    `bson:"type_id"    json:"typeId"`
	CreatedByID uuid.UUID `bson:"created_by_id" json:"createdById"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// IsZero проверяет, является ли ресурс пустым
func (r Resource) IsZero() bool {
	return r.Key == ""
}
