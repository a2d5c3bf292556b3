package models

// Collaborator is the profile owner shown on a collaborator page. It is stored
// at users/{id} and is read-only for this service.
type Collaborator struct {
	ID               string   `json:"id" firestore:"id" bson:"_id"`
	Name             string   `json:"name" firestore:"name" bson:"name"`
	Email            string   `json:"email" firestore:"email" bson:"email,omitempty"`
	Bio              string   `json:"bio" firestore:"bio" bson:"bio,omitempty"`
	Qualification    string   `json:"qualification" firestore:"qualification" bson:"qualification,omitempty"`
	Rating           float64  `json:"rating" firestore:"rating" bson:"rating"`
	TotalReviews     int      `json:"totalReviews" firestore:"totalReviews" bson:"total_reviews"`
	TotalSessions    int      `json:"totalSessions" firestore:"totalSessions" bson:"total_sessions"`
	Gender           string   `json:"gender" firestore:"gender" bson:"gender,omitempty"`
	Age              int      `json:"age" firestore:"age" bson:"age,omitempty"`
	SkillsKnown      []string `json:"skillsKnown" firestore:"skillsKnown" bson:"skills_known"`
	SkillsToLearn    []string `json:"skillsToLearn" firestore:"skillsToLearn" bson:"skills_to_learn"`
	Languages        []string `json:"languages" firestore:"languages" bson:"languages"`
	AvailabilityDate string   `json:"availabilityDate" firestore:"availabilityDate" bson:"availability_date,omitempty"`
	AvailabilityTime string   `json:"availabilityTime" firestore:"availabilityTime" bson:"availability_time,omitempty"`
}

// Certification lives under users/{id}/certifications.
type Certification struct {
	ID     string `json:"id" firestore:"-" bson:"_id"`
	UserID string `json:"-" firestore:"-" bson:"user_id"`
	Name   string `json:"name" firestore:"name" bson:"name"`
	Issuer string `json:"issuer" firestore:"issuer" bson:"issuer"`
	Date   string `json:"date" firestore:"date" bson:"date"`
	Image  string `json:"image" firestore:"image" bson:"image,omitempty"`
}

// Endorsement lives under users/{id}/endorsements.
type Endorsement struct {
	ID         string `json:"id" firestore:"-" bson:"_id"`
	UserID     string `json:"-" firestore:"-" bson:"user_id"`
	EndorsedBy string `json:"endorsedBy" firestore:"endorsedBy" bson:"endorsed_by"`
	Skill      string `json:"skill" firestore:"skill" bson:"skill"`
}

// Feedback lives under users/{id}/feedbacks.
type Feedback struct {
	ID     string  `json:"id" firestore:"-" bson:"_id"`
	UserID string  `json:"-" firestore:"-" bson:"user_id"`
	Author string  `json:"author" firestore:"author" bson:"author"`
	Date   string  `json:"date" firestore:"date" bson:"date"`
	Rating float64 `json:"rating" firestore:"rating" bson:"rating"`
	Text   string  `json:"text" firestore:"text" bson:"text"`
}
