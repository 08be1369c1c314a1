// Package httphandler contains the HTTP API handlers.
package httphandler

import (
	"time"

	"github.com/parley/parley/internal/domain/channel"
	"github.com/parley/parley/internal/domain/invitation"
	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/domain/message"
	"github.com/parley/parley/internal/domain/note"
	"github.com/parley/parley/internal/domain/profile"
	"github.com/parley/parley/internal/domain/user"
	"github.com/parley/parley/internal/domain/uuid"
	"github.com/parley/parley/internal/service"
)

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID             uuid.UUID          `json:"id"`
	Username       string             `json:"username"`
	Email          string             `json:"email,omitempty"`
	FirstName      string             `json:"firstName"`
	LastName       string             `json:"lastName"`
	FullName       string             `json:"fullName"`
	IsSuperUser    bool               `json:"isSuperUser"`
	IsActive       bool               `json:"isActive"`
	ProfilePicture *media.Resource    `json:"profilePicture,omitempty"`
	Profiles       []profile.Snapshot `json:"profiles,omitempty"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// ToUserResponse maps a user to its API representation.
func ToUserResponse(u *user.User) *UserResponse {
	if u == nil {
		return nil
	}

	resp := &UserResponse{
		ID:          u.ID(),
		Username:    u.Username(),
		Email:       u.Email(),
		FirstName:   u.FirstName(),
		LastName:    u.LastName(),
		FullName:    u.FullName(),
		IsSuperUser: u.IsSuperUser(),
		IsActive:    u.IsActive(),
		Profiles:    u.Profiles(),
		CreatedAt:   u.CreatedAt(),
	}

	if picture := u.ProfilePicture(); !picture.IsZero() {
		resp.ProfilePicture = &picture
	}

	return resp
}

// toUserSummary maps a user to a representation without email and profiles.
// Used when the user appears inside someone else's data.
func toUserSummary(u *user.User) *UserResponse {
	if u == nil {
		return nil
	}

	resp := ToUserResponse(u)
	resp.Email = ""
	resp.Profiles = nil
	return resp
}

// ChannelResponse represents a channel in API responses.
type ChannelResponse struct {
	ID          uuid.UUID        `json:"id"`
	Type        string           `json:"type"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Avatar      *media.Resource  `json:"avatar,omitempty"`
	CreatedByID uuid.UUID        `json:"createdById"`
	CreatedAt   time.Time        `json:"createdAt"`
	Role        string           `json:"role,omitempty"`
	OtherUser   *UserResponse    `json:"otherUser,omitempty"`
	LastMessage *MessageResponse `json:"lastMessage,omitempty"`
	UnreadCount int              `json:"unreadCount"`
}

// ToChannelResponse maps a bare channel to its API representation.
func ToChannelResponse(ch *channel.Channel) *ChannelResponse {
	if ch == nil {
		return nil
	}

	resp := &ChannelResponse{
		ID:          ch.ID(),
		Type:        string(ch.Type()),
		Name:        ch.Name(),
		Description: ch.Description(),
		CreatedByID: ch.CreatedByID(),
		CreatedAt:   ch.CreatedAt(),
	}

	if avatar := ch.Avatar(); !avatar.IsZero() {
		resp.Avatar = &avatar
	}

	return resp
}

// ToChannelViewResponse maps an enriched channel view to its API representation.
func ToChannelViewResponse(view service.ChannelView) *ChannelResponse {
	resp := ToChannelResponse(view.Channel)
	if resp == nil {
		return nil
	}

	resp.Role = string(view.Role)
	resp.UnreadCount = view.UnreadCount
	if view.Name != "" {
		resp.Name = view.Name
	}
	if !view.Avatar.IsZero() {
		avatar := view.Avatar
		resp.Avatar = &avatar
	}
	resp.OtherUser = toUserSummary(view.OtherUser)
	resp.LastMessage = ToMessageResponse(view.LastMessage)

	return resp
}

// MemberResponse represents a channel member in API responses.
type MemberResponse struct {
	ChannelID  uuid.UUID     `json:"channelId"`
	UserID     uuid.UUID     `json:"userId"`
	Role       string        `json:"role"`
	JoinedAt   time.Time     `json:"joinedAt"`
	LastSeenAt *time.Time    `json:"lastSeenAt,omitempty"`
	User       *UserResponse `json:"user,omitempty"`
}

// ToMemberResponse maps a member view to its API representation.
func ToMemberResponse(view service.MemberView) MemberResponse {
	m := view.Member
	resp := MemberResponse{
		ChannelID: m.ChannelID(),
		UserID:    m.UserID(),
		Role:      string(m.Role()),
		JoinedAt:  m.JoinedAt(),
		User:      toUserSummary(view.User),
	}

	if lastSeen := m.LastSeenAt(); !lastSeen.IsZero() {
		resp.LastSeenAt = &lastSeen
	}

	return resp
}

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID          uuid.UUID        `json:"id"`
	ChannelID   uuid.UUID        `json:"channelId"`
	CreatedByID uuid.UUID        `json:"createdById"`
	Text        string           `json:"text"`
	Resources   []media.Resource `json:"resources,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Author      *UserResponse    `json:"author,omitempty"`
}

// ToMessageResponse maps a message to its API representation.
func ToMessageResponse(msg *message.Message) *MessageResponse {
	if msg == nil {
		return nil
	}

	return &MessageResponse{
		ID:          msg.ID(),
		ChannelID:   msg.ChannelID(),
		CreatedByID: msg.CreatedByID(),
		Text:        msg.Text(),
		Resources:   msg.Resources(),
		CreatedAt:   msg.CreatedAt(),
		UpdatedAt:   msg.UpdatedAt(),
	}
}

// ToMessageViewResponse maps a message view with its author.
func ToMessageViewResponse(view service.MessageView) *MessageResponse {
	resp := ToMessageResponse(view.Message)
	if resp == nil {
		return nil
	}
	resp.Author = toUserSummary(view.Author)
	return resp
}

// InvitationResponse represents an invitation in API responses.
type InvitationResponse struct {
	ID               uuid.UUID        `json:"id"`
	UserID           uuid.UUID        `json:"userId"`
	CreatedByID      uuid.UUID        `json:"createdById"`
	Status           string           `json:"status"`
	ChannelType      string           `json:"channelType"`
	ChannelID        uuid.UUID        `json:"channelId"`
	Message          string           `json:"message,omitempty"`
	RespondedMessage string           `json:"respondedMessage,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	RespondedAt      *time.Time       `json:"respondedAt,omitempty"`
	FromUser         *UserResponse    `json:"fromUser,omitempty"`
	ToUser           *UserResponse    `json:"toUser,omitempty"`
	Channel          *ChannelResponse `json:"channel,omitempty"`
}

// ToInvitationResponse maps a bare invitation to its API representation.
func ToInvitationResponse(inv *invitation.Invitation) *InvitationResponse {
	if inv == nil {
		return nil
	}

	resp := &InvitationResponse{
		ID:               inv.ID(),
		UserID:           inv.UserID(),
		CreatedByID:      inv.CreatedByID(),
		Status:           string(inv.Status()),
		ChannelType:      string(inv.ChannelType()),
		ChannelID:        inv.ChannelID(),
		Message:          inv.Message(),
		RespondedMessage: inv.RespondedMessage(),
		CreatedAt:        inv.CreatedAt(),
	}

	if respondedAt := inv.RespondedAt(); !respondedAt.IsZero() {
		resp.RespondedAt = &respondedAt
	}

	return resp
}

// ToInvitationViewResponse maps an enriched invitation view.
func ToInvitationViewResponse(view service.InvitationView) *InvitationResponse {
	resp := ToInvitationResponse(view.Invitation)
	if resp == nil {
		return nil
	}
	resp.FromUser = toUserSummary(view.FromUser)
	resp.ToUser = toUserSummary(view.ToUser)
	resp.Channel = ToChannelResponse(view.Channel)
	return resp
}

// ProfileResponse represents a permission profile in API responses.
type ProfileResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Grants      []profile.Grant `json:"grants"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ToProfileResponse maps a profile to its API representation.
func ToProfileResponse(p *profile.Profile) *ProfileResponse {
	if p == nil {
		return nil
	}

	return &ProfileResponse{
		ID:          p.ID(),
		Name:        p.Name(),
		Description: p.Description(),
		Grants:      p.Grants(),
		IsActive:    p.IsActive(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

// NoteResponse represents a note in API responses.
type NoteResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToNoteResponse maps a note to its API representation.
func ToNoteResponse(n *note.Note) *NoteResponse {
	if n == nil {
		return nil
	}

	return &NoteResponse{
		ID:        n.ID(),
		Title:     n.Title(),
		Content:   n.Content(),
		CreatedAt: n.CreatedAt(),
		UpdatedAt: n.UpdatedAt(),
	}
}

// ListResponse is a generic paginated list envelope.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
