package service_test

import (
	"context"
	"io"
	"time"

	"github.com/parley/parley/internal/domain/channel"
	"github.com/parley/parley/internal/domain/errs"
	"github.com/parley/parley/internal/domain/invitation"
	"github.com/parley/parley/internal/domain/media"
	"github.com/parley/parley/internal/domain/message"
	"github.com/parley/parley/internal/domain/user"
	"github.com/parley/parley/internal/domain/uuid"
)

// mockChannelRepository is a mock implementation of channel.Repository
type mockChannelRepository struct {
	insertFunc    func(ctx context.Context, ch *channel.Channel) error
	saveFunc      func(ctx context.Context, ch *channel.Channel) error
	deleteFunc    func(ctx context.Context, id uuid.UUID) error
	findByIDFunc  func(ctx context.Context, id uuid.UUID, channelType channel.Type) (*channel.Channel, error)
	findByIDsFunc func(ctx context.Context, ids []uuid.UUID, channelType channel.Type) ([]*channel.Channel, error)
}

func (m *mockChannelRepository) Insert(ctx context.Context, ch *channel.Channel) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, ch)
	}
	return nil
}

func (m *mockChannelRepository) Save(ctx context.Context, ch *channel.Channel) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, ch)
	}
	return nil
}

func (m *mockChannelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockChannelRepository) FindByID(
	ctx context.Context,
	id uuid.UUID,
	channelType channel.Type,
) (*channel.Channel, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id, channelType)
	}
	return nil, errs.ErrNotFound
}

func (m *mockChannelRepository) FindByIDs(
	ctx context.Context,
	ids []uuid.UUID,
	channelType channel.Type,
) ([]*channel.Channel, error) {
	if m.findByIDsFunc != nil {
		return m.findByIDsFunc(ctx, ids, channelType)
	}
	return []*channel.Channel{}, nil
}

// mockMemberRepository is a mock implementation of channel.MemberRepository
type mockMemberRepository struct {
	insertManyFunc       func(ctx context.Context, members []*channel.Member) error
	findFunc             func(ctx context.Context, channelID, userID uuid.UUID) (*channel.Member, error)
	findByUserIDsFunc    func(ctx context.Context, channelID uuid.UUID, userIDs []uuid.UUID) ([]*channel.Member, error)
	listByChannelFunc    func(ctx context.Context, channelID uuid.UUID) ([]*channel.Member, error)
	listByUserFunc       func(ctx context.Context, userID uuid.UUID) ([]*channel.Member, error)
	updateRoleFunc       func(ctx context.Context, channelID, userID uuid.UUID, role channel.Role) error
	updateLastSeenAtFunc func(ctx context.Context, channelID, userID uuid.UUID) error
	countByRoleFunc      func(ctx context.Context, channelID uuid.UUID, role channel.Role) (int, error)
}

func (m *mockMemberRepository) InsertMany(ctx context.Context, members []*channel.Member) error {
	if m.insertManyFunc != nil {
		return m.insertManyFunc(ctx, members)
	}
	return nil
}

func (m *mockMemberRepository) Find(
	ctx context.Context,
	channelID, userID uuid.UUID,
) (*channel.Member, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, channelID, userID)
	}
	return nil, errs.ErrNotFound
}

func (m *mockMemberRepository) FindByUserIDs(
	ctx context.Context,
	channelID uuid.UUID,
	userIDs []uuid.UUID,
) ([]*channel.Member, error) {
	if m.findByUserIDsFunc != nil {
		return m.findByUserIDsFunc(ctx, channelID, userIDs)
	}
	return []*channel.Member{}, nil
}

func (m *mockMemberRepository) ListByChannel(
	ctx context.Context,
	channelID uuid.UUID,
) ([]*channel.Member, error) {
	if m.listByChannelFunc != nil {
		return m.listByChannelFunc(ctx, channelID)
	}
	return []*channel.Member{}, nil
}

func (m *mockMemberRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*channel.Member, error) {
	if m.listByUserFunc != nil {
		return m.listByUserFunc(ctx, userID)
	}
	return []*channel.Member{}, nil
}

func (m *mockMemberRepository) UpdateRole(
	ctx context.Context,
	channelID, userID uuid.UUID,
	role channel.Role,
) error {
	if m.updateRoleFunc != nil {
		return m.updateRoleFunc(ctx, channelID, userID, role)
	}
	return nil
}

func (m *mockMemberRepository) UpdateLastSeenAt(ctx context.Context, channelID, userID uuid.UUID) error {
	if m.updateLastSeenAtFunc != nil {
		return m.updateLastSeenAtFunc(ctx, channelID, userID)
	}
	return nil
}

func (m *mockMemberRepository) CountByRole(
	ctx context.Context,
	channelID uuid.UUID,
	role channel.Role,
) (int, error) {
	if m.countByRoleFunc != nil {
		return m.countByRoleFunc(ctx, channelID, role)
	}
	return 0, nil
}

// mockUserRepository is a mock implementation of user.Repository
type mockUserRepository struct {
	findByIDFunc        func(ctx context.Context, id uuid.UUID) (*user.User, error)
	findByIDsFunc       func(ctx context.Context, ids []uuid.UUID) ([]*user.User, error)
	findByLoginFunc     func(ctx context.Context, loginID string) (*user.User, error)
	findByUsernameFunc  func(ctx context.Context, username string, excludeID uuid.UUID) (*user.User, error)
	existsSuperUserFunc func(ctx context.Context) (bool, error)
	saveFunc            func(ctx context.Context, u *user.User) error
	listFunc            func(ctx context.Context, filter user.SearchFilter) ([]*user.User, int, error)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errs.ErrNotFound
}

func (m *mockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*user.User, error) {
	if m.findByIDsFunc != nil {
		return m.findByIDsFunc(ctx, ids)
	}
	return []*user.User{}, nil
}

func (m *mockUserRepository) FindByLogin(ctx context.Context, loginID string) (*user.User, error) {
	if m.findByLoginFunc != nil {
		return m.findByLoginFunc(ctx, loginID)
	}
	return nil, errs.ErrNotFound
}

func (m *mockUserRepository) FindByUsername(
	ctx context.Context,
	username string,
	excludeID uuid.UUID,
) (*user.User, error) {
	if m.findByUsernameFunc != nil {
		return m.findByUsernameFunc(ctx, username, excludeID)
	}
	return nil, errs.ErrNotFound
}

func (m *mockUserRepository) ExistsSuperUser(ctx context.Context) (bool, error) {
	if m.existsSuperUserFunc != nil {
		return m.existsSuperUserFunc(ctx)
	}
	return false, nil
}

func (m *mockUserRepository) Save(ctx context.Context, u *user.User) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, u)
	}
	return nil
}

func (m *mockUserRepository) List(
	ctx context.Context,
	filter user.SearchFilter,
) ([]*user.User, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return []*user.User{}, 0, nil
}

// mockInvitationRepository is a mock implementation of invitation.Repository
type mockInvitationRepository struct {
	insertManyFunc     func(ctx context.Context, invitations []*invitation.Invitation) error
	findByIDFunc       func(ctx context.Context, id uuid.UUID) (*invitation.Invitation, error)
	updateResponseFunc func(ctx context.Context, inv *invitation.Invitation) error
	deletePendingFunc  func(ctx context.Context, createdByID uuid.UUID, keys []invitation.PendingKey) error
	findFunc           func(ctx context.Context, filter invitation.Filter) ([]*invitation.Invitation, int, error)
}

func (m *mockInvitationRepository) InsertMany(ctx context.Context, invitations []*invitation.Invitation) error {
	if m.insertManyFunc != nil {
		return m.insertManyFunc(ctx, invitations)
	}
	return nil
}

func (m *mockInvitationRepository) FindByID(ctx context.Context, id uuid.UUID) (*invitation.Invitation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errs.ErrNotFound
}

func (m *mockInvitationRepository) UpdateResponse(ctx context.Context, inv *invitation.Invitation) error {
	if m.updateResponseFunc != nil {
		return m.updateResponseFunc(ctx, inv)
	}
	return nil
}

func (m *mockInvitationRepository) DeletePending(
	ctx context.Context,
	createdByID uuid.UUID,
	keys []invitation.PendingKey,
) error {
	if m.deletePendingFunc != nil {
		return m.deletePendingFunc(ctx, createdByID, keys)
	}
	return nil
}

func (m *mockInvitationRepository) Find(
	ctx context.Context,
	filter invitation.Filter,
) ([]*invitation.Invitation, int, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, filter)
	}
	return []*invitation.Invitation{}, 0, nil
}

// mockMessageRepository is a mock implementation of message.Repository
type mockMessageRepository struct {
	insertFunc            func(ctx context.Context, msg *message.Message) error
	saveFunc              func(ctx context.Context, msg *message.Message) error
	findByIDFunc          func(ctx context.Context, id uuid.UUID) (*message.Message, error)
	deleteByIDFunc        func(ctx context.Context, id uuid.UUID) error
	listByChannelFunc     func(ctx context.Context, channelID uuid.UUID, skip, limit int) ([]*message.Message, error)
	findLastByChannelFunc func(ctx context.Context, channelID uuid.UUID) (*message.Message, error)
	countAfterFunc        func(ctx context.Context, channelID uuid.UUID, t time.Time) (int, error)
}

func (m *mockMessageRepository) Insert(ctx context.Context, msg *message.Message) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, msg)
	}
	return nil
}

func (m *mockMessageRepository) Save(ctx context.Context, msg *message.Message) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, msg)
	}
	return nil
}

func (m *mockMessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*message.Message, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errs.ErrNotFound
}

func (m *mockMessageRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if m.deleteByIDFunc != nil {
		return m.deleteByIDFunc(ctx, id)
	}
	return nil
}

func (m *mockMessageRepository) ListByChannel(
	ctx context.Context,
	channelID uuid.UUID,
	skip, limit int,
) ([]*message.Message, error) {
	if m.listByChannelFunc != nil {
		return m.listByChannelFunc(ctx, channelID, skip, limit)
	}
	return []*message.Message{}, nil
}

func (m *mockMessageRepository) FindLastByChannel(
	ctx context.Context,
	channelID uuid.UUID,
) (*message.Message, error) {
	if m.findLastByChannelFunc != nil {
		return m.findLastByChannelFunc(ctx, channelID)
	}
	return nil, errs.ErrNotFound
}

func (m *mockMessageRepository) CountAfter(
	ctx context.Context,
	channelID uuid.UUID,
	t time.Time,
) (int, error) {
	if m.countAfterFunc != nil {
		return m.countAfterFunc(ctx, channelID, t)
	}
	return 0, nil
}

// mockMediaRepository is a mock implementation of media.Repository
type mockMediaRepository struct {
	insertFunc         func(ctx context.Context, resource *media.Resource) error
	findByKeyFunc      func(ctx context.Context, key string) (*media.Resource, error)
	findByKeysFunc     func(ctx context.Context, keys []string) ([]*media.Resource, error)
	findByTypeIDFunc   func(ctx context.Context, resourceType, typeID string) ([]*media.Resource, error)
	reassignTypeIDFunc func(ctx context.Context, keys []string, typeID string) error
	deleteByKeyFunc    func(ctx context.Context, key string) error
	deleteByTypeIDFunc func(ctx context.Context, resourceType, typeID string) ([]string, error)
}

func (m *mockMediaRepository) Insert(ctx context.Context, resource *media.Resource) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, resource)
	}
	return nil
}

func (m *mockMediaRepository) FindByKey(ctx context.Context, key string) (*media.Resource, error) {
	if m.findByKeyFunc != nil {
		return m.findByKeyFunc(ctx, key)
	}
	return nil, errs.ErrNotFound
}

func (m *mockMediaRepository) FindByKeys(ctx context.Context, keys []string) ([]*media.Resource, error) {
	if m.findByKeysFunc != nil {
		return m.findByKeysFunc(ctx, keys)
	}
	return []*media.Resource{}, nil
}

func (m *mockMediaRepository) FindByTypeID(
	ctx context.Context,
	resourceType, typeID string,
) ([]*media.Resource, error) {
	if m.findByTypeIDFunc != nil {
		return m.findByTypeIDFunc(ctx, resourceType, typeID)
	}
	return []*media.Resource{}, nil
}

func (m *mockMediaRepository) ReassignTypeID(ctx context.Context, keys []string, typeID string) error {
	if m.reassignTypeIDFunc != nil {
		return m.reassignTypeIDFunc(ctx, keys, typeID)
	}
	return nil
}

func (m *mockMediaRepository) DeleteByKey(ctx context.Context, key string) error {
	if m.deleteByKeyFunc != nil {
		return m.deleteByKeyFunc(ctx, key)
	}
	return nil
}

func (m *mockMediaRepository) DeleteByTypeID(
	ctx context.Context,
	resourceType, typeID string,
) ([]string, error) {
	if m.deleteByTypeIDFunc != nil {
		return m.deleteByTypeIDFunc(ctx, resourceType, typeID)
	}
	return []string{}, nil
}

// mockBlobStore is a mock implementation of media.BlobStore
type mockBlobStore struct {
	putFunc    func(ctx context.Context, key, fileName string, r io.Reader) error
	getFunc    func(ctx context.Context, key string) (io.ReadCloser, error)
	deleteFunc func(ctx context.Context, key string) error
}

func (m *mockBlobStore) Put(ctx context.Context, key, fileName string, r io.Reader) error {
	if m.putFunc != nil {
		return m.putFunc(ctx, key, fileName, r)
	}
	return nil
}

func (m *mockBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	return nil, errs.ErrNotFound
}

func (m *mockBlobStore) Delete(ctx context.Context, key string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, key)
	}
	return nil
}

// mockPasswordHasher is a mock implementation of AuthServicePasswordHasher
type mockPasswordHasher struct {
	hashFunc    func(password string) (string, error)
	compareFunc func(hash, password string) bool
}

func (m *mockPasswordHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockPasswordHasher) Compare(hash, password string) bool {
	if m.compareFunc != nil {
		return m.compareFunc(hash, password)
	}
	return hash == "hashed:"+password
}

// mockTokenIssuer is a mock implementation of AuthServiceTokenIssuer
type mockTokenIssuer struct {
	issueFunc func(u *user.User) (string, time.Duration, error)
}

func (m *mockTokenIssuer) Issue(u *user.User) (string, time.Duration, error) {
	if m.issueFunc != nil {
		return m.issueFunc(u)
	}
	return "access-token", time.Hour, nil
}

// mockTokenStore is a mock implementation of AuthServiceTokenStore
type mockTokenStore struct {
	storeRefreshTokenFunc  func(ctx context.Context, userID uuid.UUID, token string, ttl time.Duration) error
	getRefreshTokenFunc    func(ctx context.Context, userID uuid.UUID) (string, error)
	deleteRefreshTokenFunc func(ctx context.Context, userID uuid.UUID) error
	storeOTPFunc           func(ctx context.Context, email, code string, ttl time.Duration) error
	getOTPFunc             func(ctx context.Context, email string) (string, error)
	deleteOTPFunc          func(ctx context.Context, email string) error
}

func (m *mockTokenStore) StoreRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
	token string,
	ttl time.Duration,
) error {
	if m.storeRefreshTokenFunc != nil {
		return m.storeRefreshTokenFunc(ctx, userID, token, ttl)
	}
	return nil
}

func (m *mockTokenStore) GetRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.getRefreshTokenFunc != nil {
		return m.getRefreshTokenFunc(ctx, userID)
	}
	return "", nil
}

func (m *mockTokenStore) DeleteRefreshToken(ctx context.Context, userID uuid.UUID) error {
	if m.deleteRefreshTokenFunc != nil {
		return m.deleteRefreshTokenFunc(ctx, userID)
	}
	return nil
}

func (m *mockTokenStore) StoreOTP(ctx context.Context, email, code string, ttl time.Duration) error {
	if m.storeOTPFunc != nil {
		return m.storeOTPFunc(ctx, email, code, ttl)
	}
	return nil
}

func (m *mockTokenStore) GetOTP(ctx context.Context, email string) (string, error) {
	if m.getOTPFunc != nil {
		return m.getOTPFunc(ctx, email)
	}
	return "", nil
}

func (m *mockTokenStore) DeleteOTP(ctx context.Context, email string) error {
	if m.deleteOTPFunc != nil {
		return m.deleteOTPFunc(ctx, email)
	}
	return nil
}

// mockMailer is a mock implementation of AuthServiceMailer
type mockMailer struct {
	sendOTPFunc func(ctx context.Context, email, code string) error
}

func (m *mockMailer) SendOTP(ctx context.Context, email, code string) error {
	if m.sendOTPFunc != nil {
		return m.sendOTPFunc(ctx, email, code)
	}
	return nil
}
