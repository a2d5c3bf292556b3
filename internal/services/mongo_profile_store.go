package services

import (
	"context"
	"crypto/tls"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/collabhub/backend/internal/models"
)

// MongoProfileStore keeps the page model in flat collections; sub-collection
// documents carry the owning user_id.
type MongoProfileStore struct {
	client            *mongo.Client
	db                *mongo.Database
	usersCol          *mongo.Collection
	certificationsCol *mongo.Collection
	endorsementsCol   *mongo.Collection
	feedbacksCol      *mongo.Collection
	requestsCol       *mongo.Collection
}

func NewMongoProfileStore(ctx context.Context, mongoURI, dbName string) (*MongoProfileStore, error) {
	if mongoURI == "" || dbName == "" {
		return nil, ErrStoreBadInput
	}

	client, err := mongo.Connect(ctx, mongoClientOptions(mongoURI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	db := client.Database(dbName)
	s := &MongoProfileStore{
		client:            client,
		db:                db,
		usersCol:          db.Collection("users"),
		certificationsCol: db.Collection("certifications"),
		endorsementsCol:   db.Collection("endorsements"),
		feedbacksCol:      db.Collection("feedbacks"),
		requestsCol:       db.Collection("session_requests"),
	}

	// Best-effort indexes.
	for _, col := range []*mongo.Collection{s.certificationsCol, s.endorsementsCol, s.feedbacksCol} {
		_, _ = col.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}}})
	}
	_, _ = s.requestsCol.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "requester_id", Value: 1}, {Key: "recipient_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": models.SessionRequestPending}),
	})

	return s, nil
}

// mongoClientOptions leaves TLS to the URI (tls=true or mongodb+srv) and
// requires TLS 1.2 or newer when it is on.
func mongoClientOptions(mongoURI string) *options.ClientOptions {
	opts := options.Client().ApplyURI(mongoURI)
	if opts.TLSConfig != nil {
		opts.TLSConfig.MinVersion = tls.VersionTLS12
	}
	return opts
}

func (s *MongoProfileStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoProfileStore) GetCollaborator(ctx context.Context, id string) (*models.Collaborator, error) {
	var c models.Collaborator
	if err := s.usersCol.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCollaboratorNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *MongoProfileStore) ListCertifications(ctx context.Context, userID string) ([]models.Certification, error) {
	out := make([]models.Certification, 0)
	return out, findByUser(ctx, s.certificationsCol, userID, &out)
}

func (s *MongoProfileStore) ListEndorsements(ctx context.Context, userID string) ([]models.Endorsement, error) {
	out := make([]models.Endorsement, 0)
	return out, findByUser(ctx, s.endorsementsCol, userID, &out)
}

func (s *MongoProfileStore) ListFeedbacks(ctx context.Context, userID string) ([]models.Feedback, error) {
	out := make([]models.Feedback, 0)
	return out, findByUser(ctx, s.feedbacksCol, userID, &out)
}

func findByUser(ctx context.Context, col *mongo.Collection, userID string, out interface{}) error {
	cur, err := col.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func (s *MongoProfileStore) HasPendingRequest(ctx context.Context, requesterID, recipientID string) (bool, error) {
	n, err := s.requestsCol.CountDocuments(ctx, bson.M{
		"requester_id": requesterID,
		"recipient_id": recipientID,
		"status":       models.SessionRequestPending,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateSessionRequest inserts through an upsert so created_at comes from the
// server clock via $currentDate.
func (s *MongoProfileStore) CreateSessionRequest(ctx context.Context, req *models.SessionRequest) (*models.SessionRequest, error) {
	if req == nil || req.RequesterID == "" || req.RecipientID == "" {
		return nil, ErrStoreBadInput
	}

	if req.Status == models.SessionRequestPending {
		pending, err := s.HasPendingRequest(ctx, req.RequesterID, req.RecipientID)
		if err != nil {
			return nil, err
		}
		if pending {
			return nil, ErrRequestAlreadyPending
		}
	}

	id := uuid.New().String()
	_, err := s.requestsCol.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{
			"$setOnInsert": bson.M{
				"requester_id":   req.RequesterID,
				"requester_name": req.RequesterName,
				"recipient_id":   req.RecipientID,
				"recipient_name": req.RecipientName,
				"status":         req.Status,
			},
			"$currentDate": bson.M{"created_at": true},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// The partial unique index catches a concurrent pending insert.
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrRequestAlreadyPending
		}
		return nil, err
	}

	var out models.SessionRequest
	if err := s.requestsCol.FindOne(ctx, bson.M{"_id": id}).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MongoProfileStore) PutCollaborator(ctx context.Context, c *models.Collaborator) error {
	if c == nil || c.ID == "" {
		return ErrStoreBadInput
	}
	_, err := s.usersCol.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoProfileStore) PutCertification(ctx context.Context, userID string, c *models.Certification) error {
	if userID == "" || c == nil {
		return ErrStoreBadInput
	}
	c.UserID = userID
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return replaceByID(ctx, s.certificationsCol, c.ID, c)
}

func (s *MongoProfileStore) PutEndorsement(ctx context.Context, userID string, e *models.Endorsement) error {
	if userID == "" || e == nil {
		return ErrStoreBadInput
	}
	e.UserID = userID
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return replaceByID(ctx, s.endorsementsCol, e.ID, e)
}

func (s *MongoProfileStore) PutFeedback(ctx context.Context, userID string, f *models.Feedback) error {
	if userID == "" || f == nil {
		return ErrStoreBadInput
	}
	f.UserID = userID
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return replaceByID(ctx, s.feedbacksCol, f.ID, f)
}

func replaceByID(ctx context.Context, col *mongo.Collection, id string, doc interface{}) error {
	_, err := col.ReplaceOne(ctx, bson.M{"_id": id}, doc, options.Replace().SetUpsert(true))
	return err
}
