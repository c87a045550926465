package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aniwa/aniwa-server/internal/core/domain"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

const (
	usersCollection       = "users"
	roleChangesCollection = "role_changes"
)

type UserRepository struct {
	client *mongo.Client
	users  *mongo.Collection
	audit  *mongo.Collection
}

func NewUserRepository(client *mongo.Client, db *mongo.Database) *UserRepository {
	return &UserRepository{
		client: client,
		users:  db.Collection(usersCollection),
		audit:  db.Collection(roleChangesCollection),
	}
}

var _ ports.UserRepository = (*UserRepository)(nil)

type mongoUser struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Username           string             `bson:"username"`
	Email              string             `bson:"email"`
	PasswordHash       string             `bson:"password_hash"`
	Role               string             `bson:"role"`
	DisplayName        string             `bson:"display_name,omitempty"`
	Bio                string             `bson:"bio,omitempty"`
	AvatarURL          string             `bson:"avatar_url,omitempty"`
	LastUsernameChange *time.Time         `bson:"last_username_change,omitempty"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

type mongoRoleChange struct {
	UserID       primitive.ObjectID `bson:"user_id"`
	GrantedBy    string             `bson:"granted_by"`
	PreviousRole string             `bson:"previous_role"`
	NewRole      string             `bson:"new_role"`
	Reason       string             `bson:"reason,omitempty"`
	GrantedAt    time.Time          `bson:"granted_at"`
}

func (mu *mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                 mu.ID.Hex(),
		Username:           mu.Username,
		Email:              mu.Email,
		PasswordHash:       mu.PasswordHash,
		Role:               domain.Role(mu.Role),
		DisplayName:        mu.DisplayName,
		Bio:                mu.Bio,
		AvatarURL:          mu.AvatarURL,
		LastUsernameChange: mu.LastUsernameChange,
		CreatedAt:          mu.CreatedAt.UTC(),
		UpdatedAt:          mu.UpdatedAt.UTC(),
	}
}

// EnsureIndexes creates the unique indexes that back username and email
// uniqueness, plus the audit lookup index. Must run before serving traffic.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	userIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	}
	if _, err := r.users.Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	auditIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "granted_at", Value: -1}}},
	}
	if _, err := r.audit.Indexes().CreateMany(ctx, auditIndexes); err != nil {
		return fmt.Errorf("create role_changes indexes: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	doc := mongoUser{
		Username:           user.Username,
		Email:              user.Email,
		PasswordHash:       user.PasswordHash,
		Role:               string(user.Role),
		DisplayName:        user.DisplayName,
		Bio:                user.Bio,
		AvatarURL:          user.AvatarURL,
		LastUsernameChange: user.LastUsernameChange,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	res, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateKeyToDomain(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.users.FindOne(ctx, filter).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) Update(ctx context.Context, id string, fields ports.UpdateUserFields) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	if fields.Username != nil {
		set["username"] = *fields.Username
	}
	if fields.PasswordHash != nil {
		set["password_hash"] = *fields.PasswordHash
	}
	if fields.DisplayName != nil {
		set["display_name"] = *fields.DisplayName
	}
	if fields.Bio != nil {
		set["bio"] = *fields.Bio
	}
	if fields.AvatarURL != nil {
		set["avatar_url"] = *fields.AvatarURL
	}
	if fields.LastUsernameChange != nil {
		set["last_username_change"] = *fields.LastUsernameChange
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mu mongoUser
	err = r.users.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&mu)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateKeyToDomain(err)
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.users.CountDocuments(ctx, bson.M{"role": string(role)})
	if err != nil {
		return 0, fmt.Errorf("count by role: %w", err)
	}
	return n, nil
}

// ChangeRole writes the role and the audit record in one transaction. The
// update filter re-checks the previous role so a concurrent change aborts
// with ErrRoleConflict, and a demotion away from site_owner re-counts the
// remaining owners inside the transaction.
func (r *UserRepository) ChangeRole(ctx context.Context, record domain.RoleChangeRecord) error {
	oid, err := primitive.ObjectIDFromHex(record.UserID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if record.PreviousRole == domain.RoleSiteOwner && record.NewRole != domain.RoleSiteOwner {
			owners, err := r.users.CountDocuments(sc, bson.M{"role": string(domain.RoleSiteOwner)})
			if err != nil {
				return nil, fmt.Errorf("count site owners: %w", err)
			}
			if owners <= 1 {
				return nil, domain.ErrLastSiteOwner
			}
		}

		res, err := r.users.UpdateOne(sc,
			bson.M{"_id": oid, "role": string(record.PreviousRole)},
			bson.M{"$set": bson.M{"role": string(record.NewRole), "updated_at": time.Now().UTC()}},
		)
		if err != nil {
			return nil, fmt.Errorf("update role: %w", err)
		}
		if res.MatchedCount == 0 {
			// Either the user vanished or the role moved under us.
			n, err := r.users.CountDocuments(sc, bson.M{"_id": oid})
			if err != nil {
				return nil, fmt.Errorf("check user: %w", err)
			}
			if n == 0 {
				return nil, domain.ErrUserNotFound
			}
			return nil, domain.ErrRoleConflict
		}

		doc := mongoRoleChange{
			UserID:       oid,
			GrantedBy:    record.GrantedBy,
			PreviousRole: string(record.PreviousRole),
			NewRole:      string(record.NewRole),
			Reason:       record.Reason,
			GrantedAt:    record.GrantedAt.UTC(),
		}
		if _, err := r.audit.InsertOne(sc, doc); err != nil {
			return nil, fmt.Errorf("insert audit record: %w", err)
		}
		return nil, nil
	})
	return err
}

func (r *UserRepository) RoleChanges(ctx context.Context, userID string) ([]domain.RoleChangeRecord, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "granted_at", Value: -1}})
	cur, err := r.audit.Find(ctx, bson.M{"user_id": oid}, opts)
	if err != nil {
		return nil, fmt.Errorf("find role changes: %w", err)
	}
	defer cur.Close(ctx)

	var records []domain.RoleChangeRecord
	for cur.Next(ctx) {
		var mc mongoRoleChange
		if err := cur.Decode(&mc); err != nil {
			return nil, fmt.Errorf("decode role change: %w", err)
		}
		records = append(records, domain.RoleChangeRecord{
			UserID:       mc.UserID.Hex(),
			GrantedBy:    mc.GrantedBy,
			PreviousRole: domain.Role(mc.PreviousRole),
			NewRole:      domain.Role(mc.NewRole),
			Reason:       mc.Reason,
			GrantedAt:    mc.GrantedAt.UTC(),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate role changes: %w", err)
	}
	return records, nil
}

func (r *UserRepository) List(ctx context.Context, filter ports.ListUsersFilter) ([]*domain.User, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Role != "" {
		query["role"] = string(filter.Role)
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexQuote(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"username": pattern},
			bson.M{"email": pattern},
		}
	}

	total, err := r.users.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.users.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, 0, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate users: %w", err)
	}
	return users, total, nil
}

// duplicateKeyToDomain inspects which unique index rejected the write.
func duplicateKeyToDomain(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return domain.ErrEmailTaken
	default:
		return domain.ErrUsernameTaken
	}
}

// regexQuote escapes user input before it is embedded in a $regex filter.
func regexQuote(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
