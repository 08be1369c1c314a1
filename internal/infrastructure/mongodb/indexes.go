// Package mongodb provides MongoDB infrastructure components including index management.
package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names as constants for consistency.
const (
	CollectionUsers       = "users"
	CollectionProfiles    = "permission_profiles"
	CollectionChannels    = "chat_channels"
	CollectionMembers     = "chat_channel_members"
	CollectionInvitations = "chat_channel_invitations"
	CollectionMessages    = "chat_channel_messages"
	CollectionNotes       = "notes"
	CollectionMedia       = "media_resources"
)

// IndexDefinition describes a MongoDB index to be created.
type IndexDefinition struct {
	Collection string
	Keys       bson.D
	Options    *options.IndexOptionsBuilder
}

// CreateAllIndexes creates all necessary indexes for the application.
// This function is idempotent - calling it multiple times is safe.
func CreateAllIndexes(ctx context.Context, db *mongo.Database) error {
	for _, idx := range GetAllIndexDefinitions() {
		coll := db.Collection(idx.Collection)
		model := mongo.IndexModel{
			Keys:    idx.Keys,
			Options: idx.Options,
		}

		_, err := coll.Indexes().CreateOne(ctx, model)
		if err != nil {
			return fmt.Errorf("failed to create index on collection %s: %w", idx.Collection, err)
		}
	}

	return nil
}

// GetAllIndexDefinitions returns all index definitions for all collections.
func GetAllIndexDefinitions() []IndexDefinition {
	var indexes []IndexDefinition

	indexes = append(indexes, GetUserIndexes()...)
	indexes = append(indexes, GetProfileIndexes()...)
	indexes = append(indexes, GetChannelIndexes()...)
	indexes = append(indexes, GetMemberIndexes()...)
	indexes = append(indexes, GetInvitationIndexes()...)
	indexes = append(indexes, GetMessageIndexes()...)
	indexes = append(indexes, GetNoteIndexes()...)
	indexes = append(indexes, GetMediaIndexes()...)

	return indexes
}

// GetUserIndexes returns index definitions for the users collection.
func GetUserIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			// Primary key - unique user ID
			Collection: CollectionUsers,
			Keys:       bson.D{{Key: "user_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_users_id_unique"),
		},
		{
			// Unique index for username
			Collection: CollectionUsers,
			Keys:       bson.D{{Key: "username", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_users_username_unique"),
		},
		{
			// Unique index for email
			Collection: CollectionUsers,
			Keys:       bson.D{{Key: "email", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_users_email_unique"),
		},
		{
			// Index for super user bootstrap lookup
			Collection: CollectionUsers,
			Keys:       bson.D{{Key: "is_super_user", Value: 1}},
			Options:    options.Index().SetName("idx_users_super_user"),
		},
	}
}

// GetProfileIndexes returns index definitions for the permission profiles collection.
func GetProfileIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			// Primary key - unique profile ID
			Collection: CollectionProfiles,
			Keys:       bson.D{{Key: "profile_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_profiles_id_unique"),
		},
		{
			// Unique index for profile name
			Collection: CollectionProfiles,
			Keys:       bson.D{{Key: "name", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_profiles_name_unique"),
		},
	}
}

// GetChannelIndexes returns index definitions for the chat channels collection.
func GetChannelIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			// Primary key - unique channel ID. Direct channel IDs are derived
			// from the user pair, so this index also serializes concurrent
			// direct channel creation.
			Collection: CollectionChannels,
			Keys:       bson.D{{Key: "channel_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_channels_id_unique"),
		},
		{
			// Index for filtering channels by type
			Collection: CollectionChannels,
			Keys:       bson.D{{Key: "type", Value: 1}},
			Options:    options.Index().SetName("idx_channels_type"),
		},
	}
}

// GetMemberIndexes returns index definitions for the channel members collection.
func GetMemberIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			// Unique membership per (channel, user)
			Collection: CollectionMembers,
			Keys:       bson.D{{Key: "channel_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_members_channel_user_unique"),
		},
		{
			// Index for listing a user's memberships
			Collection: CollectionMembers,
			Keys:       bson.D{{Key: "user_id", Value: 1}},
			Options:    options.Index().SetName("idx_members_user"),
		},
		{
			// Index for counting members by role within a channel
			Collection: CollectionMembers,
			Keys:       bson.D{{Key: "channel_id", Value: 1}, {Key: "role", Value: 1}},
			Options:    options.Index().SetName("idx_members_channel_role"),
		},
	}
}

// GetInvitationIndexes returns index definitions for the invitations collection.
func GetInvitationIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			// Primary key - unique invitation ID
			Collection: CollectionInvitations,
			Keys:       bson.D{{Key: "invitation_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_invitations_id_unique"),
		},
		{
			// Index for the recipient's inbox, newest first
			Collection: CollectionInvitations,
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_invitations_user_status_time"),
		},
		{
			// Index for the sender's pending replacement and sent listing
			Collection: CollectionInvitations,
			Keys: bson.D{
				{Key: "created_by_id", Value: 1},
				{Key: "status", Value: 1},
				{Key: "channel_id", Value: 1},
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_invitations_creator_status_channel_user_time"),
		},
	}
}

// GetMessageIndexes returns index definitions for the messages collection.
func GetMessageIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			// Primary key - unique message ID
			Collection: CollectionMessages,
			Keys:       bson.D{{Key: "message_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_messages_id_unique"),
		},
		{
			// Index for channel history pages and unread counts
			Collection: CollectionMessages,
			Keys:       bson.D{{Key: "channel_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options:    options.Index().SetName("idx_messages_channel_time"),
		},
	}
}

// GetNoteIndexes returns index definitions for the notes collection.
func GetNoteIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			// Primary key - unique note ID
			Collection: CollectionNotes,
			Keys:       bson.D{{Key: "note_id", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_notes_id_unique"),
		},
		{
			// Index for listing an owner's notes, recently updated first
			Collection: CollectionNotes,
			Keys:       bson.D{{Key: "created_by_id", Value: 1}, {Key: "updated_at", Value: -1}},
			Options:    options.Index().SetName("idx_notes_owner_updated"),
		},
	}
}

// GetMediaIndexes returns index definitions for the media resources collection.
func GetMediaIndexes() []IndexDefinition {
	return []IndexDefinition{
		{
			// Primary key - unique storage key
			Collection: CollectionMedia,
			Keys:       bson.D{{Key: "key", Value: 1}},
			Options:    options.Index().SetUnique(true).SetName("idx_media_key_unique"),
		},
		{
			// Index for resolving all resources of an owner
			Collection: CollectionMedia,
			Keys:       bson.D{{Key: "type", Value: 1}, {Key: "type_id", Value: 1}},
			Options:    options.Index().SetName("idx_media_owner"),
		},
	}
}
