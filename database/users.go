package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var u User
	if err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, wrap("Store.GetUser", err)
	}
	return &u, nil
}

// EnsureUser creates the profile on first login and leaves an existing one
// untouched. It reports whether a new document was written.
func (s *Store) EnsureUser(ctx context.Context, u *User) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$setOnInsert": bson.M{
			"email":      u.Email,
			"name":       u.Name,
			"phone":      u.Phone,
			"created_at": u.CreatedAt,
		}},
		options.Update().SetUpsert(true))
	if err != nil {
		return false, wrap("Store.EnsureUser", err)
	}
	return res.UpsertedCount > 0, nil
}

// FieldTakenByOther reports whether another user already holds value in field.
func (s *Store) FieldTakenByOther(ctx context.Context, field, value, userID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := s.users.CountDocuments(ctx, bson.M{field: value, "_id": bson.M{"$ne": userID}})
	if err != nil {
		return false, wrap("Store.FieldTakenByOther", err)
	}
	return n > 0, nil
}

// UpdateUser writes only the given fields plus updated_at.
func (s *Store) UpdateUser(ctx context.Context, id string, fields map[string]string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	set := bson.M{"updated_at": now}
	for k, v := range fields {
		set[k] = v
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return wrap("Store.UpdateUser", err)
	}
	if res.MatchedCount == 0 {
		return wrap("Store.UpdateUser", ErrNotFound)
	}
	return nil
}
