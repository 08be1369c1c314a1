package service

import (
	"net/http"

	"github.com/parley/parley/internal/domain/errs"
)

// DomainError carries a human-readable rule violation together with its HTTP
// representation. It satisfies the httpserver.HTTPError interface, so
// handlers surface the message verbatim, and unwraps to an errs sentinel for
// errors.Is checks in services and tests.
type DomainError struct {
	status   int
	code     string
	message  string
	sentinel error
}

// Error returns the human-readable reason.
func (e *DomainError) Error() string { return e.message }

// Unwrap returns the underlying errs sentinel.
func (e *DomainError) Unwrap() error { return e.sentinel }

// HTTPStatus returns the HTTP status code for this error.
func (e *DomainError) HTTPStatus() int { return e.status }

// HTTPCode returns the machine-readable error code.
func (e *DomainError) HTTPCode() string { return e.code }

// HTTPMessage returns the message surfaced to the caller.
func (e *DomainError) HTTPMessage() string { return e.message }

func notFound(code, message string) *DomainError {
	return &DomainError{
		status:   http.StatusNotFound,
		code:     code,
		message:  message,
		sentinel: errs.ErrNotFound,
	}
}

func badRequest(code, message string) *DomainError {
	return &DomainError{
		status:   http.StatusBadRequest,
		code:     code,
		message:  message,
		sentinel: errs.ErrInvalidInput,
	}
}

func unauthorized(code, message string) *DomainError {
	return &DomainError{
		status:   http.StatusUnauthorized,
		code:     code,
		message:  message,
		sentinel: errs.ErrUnauthorized,
	}
}

// Domain rule violations. Messages are surfaced to callers verbatim and
// mirror the wording the API has always used.
var (
	// users
	ErrUsersNotFound = notFound("USERS_NOT_FOUND", "Unable to find all users.")
	ErrUserNotFound  = notFound("USER_NOT_FOUND", "Unable to find user.")

	// channels and members
	ErrChatGroupNotFound = notFound("CHAT_GROUP_NOT_FOUND", "Unable to find Chat group.")
	ErrNotGroupMember    = badRequest("NOT_A_MEMBER", "You are not a member of this chat group.")
	ErrCannotUpdateChannel = badRequest(
		"NO_UPDATE_PERMISSION",
		"You do not have permission to update this chat group details.",
	)
	ErrCannotAssignRole = badRequest(
		"NO_ROLE_ASSIGN_PERMISSION",
		"You do not have permissions to assign this role.",
	)
	ErrCannotUpdateMemberRole = badRequest(
		"NO_MEMBER_ROLE_PERMISSION",
		"You do not have permission to update this chat channel member role.",
	)
	ErrMemberNotFound = notFound("MEMBER_NOT_FOUND", "Unable to find chat channel member.")

	// invitations
	ErrInvitationNotFound = notFound("INVITATION_NOT_FOUND", "Unable to find chat invitation.")
	ErrNotInvitationRecipient = badRequest(
		"NOT_INVITATION_RECIPIENT",
		"You do not have permission to respond to this invitation.",
	)
	ErrAlreadyResponded = badRequest(
		"ALREADY_RESPONDED",
		"You have already responded to this invitation.",
	)
	ErrCannotInvite = badRequest(
		"NO_INVITE_PERMISSION",
		"You don't have permission to invite users to this chat group.",
	)

	// messages
	ErrChatChannelNotFound = notFound("CHAT_CHANNEL_NOT_FOUND", "Chat channel not found.")
	ErrNotChannelMember    = badRequest("NOT_A_MEMBER", "You are not a member of this chat channel.")
	ErrCannotPostMessage   = badRequest(
		"NO_POST_PERMISSION",
		"You do not have permission to send message to this chat channel.",
	)
	ErrMessageNotFound      = notFound("MESSAGE_NOT_FOUND", "Message not found.")
	ErrCannotUpdateMessage  = badRequest("NO_MESSAGE_UPDATE_PERMISSION", "You do not have permission to update this message.")
	ErrCannotDeleteMessage  = badRequest("NO_MESSAGE_DELETE_PERMISSION", "You do not have permission to delete this message.")
	ErrMessageBodyRequired  = badRequest("MESSAGE_BODY_REQUIRED", "Message or Resources must be provided.")
	ErrInvalidRole          = badRequest("INVALID_ROLE", "Invalid chat channel member role.")

	// auth
	ErrInvalidCredentials = unauthorized("INVALID_CREDENTIALS", "Invalid login or password.")
	ErrUserInactive       = unauthorized("USER_INACTIVE", "User account is disabled.")
	ErrInvalidOTP         = badRequest("INVALID_OTP", "Invalid or expired verification code.")
	ErrUsernameTaken      = badRequest("USERNAME_TAKEN", "There is already a user with this username.")
	ErrEmailTaken         = badRequest("EMAIL_TAKEN", "There is already a user with this email.")
	ErrInvalidUsername    = badRequest("INVALID_USERNAME", "Invalid username.")

	// profiles
	ErrProfileNotFound  = notFound("PROFILE_NOT_FOUND", "One or more profiles not found.")
	ErrProfileNameTaken = badRequest("PROFILE_NAME_TAKEN", "There is already a profile with this name.")

	// notes
	ErrNoteNotFound = notFound("NOTE_NOT_FOUND", "Note not found.")

	// media
	ErrFileNotFound = notFound("FILE_NOT_FOUND", "File not found.")
)
