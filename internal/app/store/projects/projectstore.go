// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/taskdeck/taskdeck/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	// ErrNotFound covers both a missing project and a project the
	// requester has no standing on; callers report them identically so
	// project existence is not leaked.
	ErrNotFound = errors.New("project not found")

	ErrAlreadyMember = errors.New("user is already a member or manager of the project")
	ErrNotMember     = errors.New("user is not a member of the project")
	ErrNotManager    = errors.New("user is not a manager of the project")
	ErrAlreadyManager = errors.New("user is already a manager of the project")

	// ErrMembershipChanged means a guarded mutation matched nothing
	// because the membership set moved under us between the snapshot
	// read and the conditional write.
	ErrMembershipChanged = errors.New("project membership changed, retry the operation")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

// Create inserts a project with the creator as its sole manager.
func (s *Store) Create(ctx context.Context, title, description string, creator models.User) (models.Project, error) {
	p := models.Project{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: description,
		Members: []models.ProjectMember{{
			ID:        creator.ID,
			FirstName: creator.FirstName,
			LastName:  creator.LastName,
			Email:     creator.Email,
			Role:      models.RoleManager,
		}},
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// ListForMember returns every project the user appears in, any role.
func (s *Store) ListForMember(ctx context.Context, userID, after primitive.ObjectID, limit int64) ([]models.Project, error) {
	filter := bson.M{"members._id": userID}
	if !after.IsZero() {
		filter["_id"] = bson.M{"$gt": after}
	}
	opts := options.Find().SetSort(bson.M{"_id": 1})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetForMember fetches a project scoped to a member of any role. A
// miss, whether absence or lack of membership, is ErrNotFound.
func (s *Store) GetForMember(ctx context.Context, id, userID primitive.ObjectID) (models.Project, error) {
	return s.getScoped(ctx, bson.M{"_id": id, "members._id": userID})
}

// GetForManager fetches a project only if the user holds the manager
// role on it. Used as the gate for every membership mutation.
func (s *Store) GetForManager(ctx context.Context, id, userID primitive.ObjectID) (models.Project, error) {
	return s.getScoped(ctx, bson.M{
		"_id":     id,
		"members": bson.M{"$elemMatch": bson.M{"_id": userID, "role": models.RoleManager}},
	})
}

// GetByID fetches a project with no membership scoping. Reserved for
// internal consistency checks (e.g. resolving a task's parent).
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	return s.getScoped(ctx, bson.M{"_id": id})
}

func (s *Store) getScoped(ctx context.Context, filter bson.M) (models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, filter).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Project{}, ErrNotFound
		}
		return models.Project{}, err
	}
	return p, nil
}

// Delete removes the project document. Task cascade is the caller's
// responsibility and runs before this so a crash between the two steps
// cannot orphan tasks.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMember appends the user to the members array with the member
// role. The filter excludes projects where the user already appears in
// any role, so the append is atomic with its own precondition.
func (s *Store) AddMember(ctx context.Context, projectID primitive.ObjectID, user models.User) error {
	member := models.ProjectMember{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      models.RoleMember,
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": projectID, "members._id": bson.M{"$ne": user.ID}},
		bson.M{"$addToSet": bson.M{"members": member}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// The filter also misses when the project vanished between the
		// caller's manager gate and this update.
		if exists, err := s.exists(ctx, projectID); err != nil {
			return err
		} else if !exists {
			return ErrNotFound
		}
		return ErrAlreadyMember
	}
	return nil
}

func (s *Store) exists(ctx context.Context, projectID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"_id": projectID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// RemoveMember pulls the user out of the members array regardless of
// role. Matching requires the user to currently be present.
func (s *Store) RemoveMember(ctx context.Context, projectID, userID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": projectID, "members._id": userID},
		bson.M{"$pull": bson.M{"members": bson.M{"_id": userID}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if exists, err := s.exists(ctx, projectID); err != nil {
			return err
		} else if !exists {
			return ErrNotFound
		}
		return ErrNotMember
	}
	return nil
}

// Promote flips the user's role tag to manager. The filter requires a
// current membership entry with the member role, so promoting an
// absent user or a sitting manager matches nothing.
func (s *Store) Promote(ctx context.Context, projectID, userID primitive.ObjectID) error {
	return s.setRole(ctx, projectID, userID, models.RoleMember, models.RoleManager)
}

// Demote flips a manager's role tag back to member.
func (s *Store) Demote(ctx context.Context, projectID, userID primitive.ObjectID) error {
	return s.setRole(ctx, projectID, userID, models.RoleManager, models.RoleMember)
}

func (s *Store) setRole(ctx context.Context, projectID, userID primitive.ObjectID, from, to string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": projectID, "members": bson.M{"$elemMatch": bson.M{"_id": userID, "role": from}}},
		bson.M{"$set": bson.M{"members.$.role": to}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrMembershipChanged
	}
	return nil
}
