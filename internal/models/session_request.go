package models

import "time"

const (
	SessionRequestPending = "pending"

	// AnonymousName is snapshotted when the viewer has no display name.
	AnonymousName = "Anonymous"
)

// SessionRequest links a requester to a recipient. CreatedAt is assigned by
// the database server.
type SessionRequest struct {
	ID            string    `json:"id" firestore:"-" bson:"_id"`
	RequesterID   string    `json:"requesterId" firestore:"requesterId" bson:"requester_id"`
	RequesterName string    `json:"requesterName" firestore:"requesterName" bson:"requester_name"`
	RecipientID   string    `json:"recipientId" firestore:"recipientId" bson:"recipient_id"`
	RecipientName string    `json:"recipientName" firestore:"recipientName" bson:"recipient_name"`
	Status        string    `json:"status" firestore:"status" bson:"status"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt" bson:"created_at"`
}

// Viewer is the authenticated user acting on a page.
type Viewer struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}
