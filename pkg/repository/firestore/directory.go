package firestore

import (
	"context"
	"slices"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/usersreport/pkg/domain/interfaces"
	"github.com/secmon-lab/usersreport/pkg/domain/model"
	"github.com/secmon-lab/usersreport/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	UsersCollection        = "users"
	AccessGrantsCollection = "access_grants"
	LoginAuditCollection   = "login_audit"
	RolesCollection        = "roles"

	// Firestore batch operation limits
	// Reference: https://cloud.google.com/firestore/docs/query-data/get-data#go
	firestoreGetAllLimit = 30 // Maximum document references per GetAll
)

type directoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
	adminRoleID      model.RoleID
}

var (
	_ interfaces.DirectoryRepository = &directoryRepository{}
	_ interfaces.DirectoryWriter     = &directoryRepository{}
)

func newDirectoryRepository(client *firestore.Client) *directoryRepository {
	return &directoryRepository{
		client:      client,
		adminRoleID: model.DefaultAdministratorRoleID,
	}
}

// userDoc is the Firestore persistence model of a user
type userDoc struct {
	ID        string   `firestore:"id"`
	FirstName string   `firestore:"first_name"`
	LastName  string   `firestore:"last_name"`
	Email     string   `firestore:"email"`
	HasAccess bool     `firestore:"has_access"`
	RoleIDs   []string `firestore:"role_ids"`
}

type accessGrantDoc struct {
	UserID    string    `firestore:"user_id"`
	GrantedAt time.Time `firestore:"granted_at"`
}

type loginDoc struct {
	UserID  string    `firestore:"user_id"`
	At      time.Time `firestore:"at"`
	Success bool      `firestore:"success"`
}

type roleDoc struct {
	ID         string `firestore:"id"`
	Name       string `firestore:"name"`
	CenterType string `firestore:"center_type"`
	SSOLevel   *int   `firestore:"sso_level"`
}

func (r *directoryRepository) users() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, UsersCollection))
}

func (r *directoryRepository) grants() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, AccessGrantsCollection))
}

func (r *directoryRepository) logins() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, LoginAuditCollection))
}

func (r *directoryRepository) roles() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, RolesCollection))
}

// ListEligibleUsers returns users with has_access set, ordered by ID
func (r *directoryRepository) ListEligibleUsers(ctx context.Context) ([]*model.UserCandidate, error) {
	iter := r.users().Where("has_access", "==", true).Documents(ctx)
	defer iter.Stop()

	var users []*model.UserCandidate
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var d userDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("docID", doc.Ref.ID))
		}
		if d.ID == "" {
			d.ID = doc.Ref.ID
		}

		users = append(users, &model.UserCandidate{
			ID:        model.UserID(d.ID),
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Email:     d.Email,
		})
	}

	slices.SortFunc(users, func(a, b *model.UserCandidate) int {
		return model.CompareUserID(a.ID, b.ID)
	})
	return users, nil
}

// MostRecentAccessGrant returns the latest grant, Absent when there is none
func (r *directoryRepository) MostRecentAccessGrant(ctx context.Context, id model.UserID) (model.TimestampSignal, error) {
	iter := r.grants().
		Where("user_id", "==", string(id)).
		OrderBy("granted_at", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return model.Absent(), nil
	}
	if err != nil {
		return model.Absent(), goerr.Wrap(err, "failed to query access grants", goerr.V("user_id", id))
	}

	var d accessGrantDoc
	if err := doc.DataTo(&d); err != nil {
		return model.Absent(), goerr.Wrap(err, "failed to unmarshal access grant", goerr.V("docID", doc.Ref.ID))
	}
	return model.Present(d.GrantedAt), nil
}

// MostRecentLogin returns the latest successful login, Absent when there is none
func (r *directoryRepository) MostRecentLogin(ctx context.Context, id model.UserID) (model.TimestampSignal, error) {
	iter := r.logins().
		Where("user_id", "==", string(id)).
		Where("success", "==", true).
		OrderBy("at", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return model.Absent(), nil
	}
	if err != nil {
		return model.Absent(), goerr.Wrap(err, "failed to query login audit", goerr.V("user_id", id))
	}

	var d loginDoc
	if err := doc.DataTo(&d); err != nil {
		return model.Absent(), goerr.Wrap(err, "failed to unmarshal login", goerr.V("docID", doc.Ref.ID))
	}
	return model.Present(d.At), nil
}

// EntitlementsFor resolves the user's role IDs against the roles collection.
// Role IDs without a definition are reported as non-employee roles without SSO.
func (r *directoryRepository) EntitlementsFor(ctx context.Context, id model.UserID) (model.EntitlementSet, error) {
	snap, err := r.users().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return model.EntitlementSet{}, nil
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("user_id", id))
	}

	var user userDoc
	if err := snap.DataTo(&user); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("user_id", id))
	}

	set := make(model.EntitlementSet, 0, len(user.RoleIDs))

	// Split into batches of firestoreGetAllLimit
	for i := 0; i < len(user.RoleIDs); i += firestoreGetAllLimit {
		end := min(i+firestoreGetAllLimit, len(user.RoleIDs))
		batch := user.RoleIDs[i:end]

		refs := make([]*firestore.DocumentRef, len(batch))
		for j, roleID := range batch {
			refs[j] = r.roles().Doc(roleID)
		}

		docs, err := r.client.GetAll(ctx, refs)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to batch get roles",
				goerr.V("user_id", id),
				goerr.V("count", len(batch)))
		}

		for idx, doc := range docs {
			role := model.Role{
				ID:         model.RoleID(batch[idx]),
				CenterType: types.CenterTypeFull,
			}
			if doc.Exists() {
				var d roleDoc
				if err := doc.DataTo(&d); err != nil {
					return nil, goerr.Wrap(err, "failed to unmarshal role", goerr.V("role_id", batch[idx]))
				}
				role.Name = d.Name
				role.CenterType = types.ParseCenterType(d.CenterType)
				role.SSOLevel = d.SSOLevel
			}
			role.IsAdministrator = role.ID == r.adminRoleID
			set = append(set, role)
		}
	}

	return set, nil
}

// PutUser stores the user profile, keeping its role assignments
func (r *directoryRepository) PutUser(ctx context.Context, user *model.UserCandidate, hasAccess bool) error {
	if user == nil || user.ID == "" {
		return goerr.New("user ID is required")
	}

	_, err := r.users().Doc(string(user.ID)).Set(ctx, map[string]any{
		"id":         string(user.ID),
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
		"has_access": hasAccess,
	}, firestore.MergeAll)
	if err != nil {
		return goerr.Wrap(err, "failed to put user", goerr.V("user_id", user.ID))
	}
	return nil
}

func (r *directoryRepository) AddAccessGrant(ctx context.Context, id model.UserID, at time.Time) error {
	if _, _, err := r.grants().Add(ctx, &accessGrantDoc{UserID: string(id), GrantedAt: at}); err != nil {
		return goerr.Wrap(err, "failed to add access grant", goerr.V("user_id", id))
	}
	return nil
}

func (r *directoryRepository) AddLogin(ctx context.Context, id model.UserID, at time.Time, success bool) error {
	if _, _, err := r.logins().Add(ctx, &loginDoc{UserID: string(id), At: at, Success: success}); err != nil {
		return goerr.Wrap(err, "failed to add login", goerr.V("user_id", id))
	}
	return nil
}

func (r *directoryRepository) PutRole(ctx context.Context, role model.Role) error {
	if role.ID == "" {
		return goerr.New("role ID is required", goerr.V("name", role.Name))
	}

	d := &roleDoc{
		ID:         string(role.ID),
		Name:       role.Name,
		CenterType: role.CenterType.String(),
		SSOLevel:   role.SSOLevel,
	}
	if _, err := r.roles().Doc(string(role.ID)).Set(ctx, d); err != nil {
		return goerr.Wrap(err, "failed to put role", goerr.V("role_id", role.ID))
	}
	return nil
}

func (r *directoryRepository) AssignRoles(ctx context.Context, id model.UserID, roleIDs ...model.RoleID) error {
	ids := make([]string, len(roleIDs))
	for i, roleID := range roleIDs {
		ids[i] = string(roleID)
	}

	_, err := r.users().Doc(string(id)).Set(ctx, map[string]any{
		"role_ids": ids,
	}, firestore.MergeAll)
	if err != nil {
		return goerr.Wrap(err, "failed to assign roles", goerr.V("user_id", id))
	}
	return nil
}
