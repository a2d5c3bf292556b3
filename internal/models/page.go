package models

// CollaboratorPage is the render model for a collaborator profile.
type CollaboratorPage struct {
	Loading        bool              `json:"loading"`
	Collaborator   *CollaboratorCard `json:"collaborator,omitempty"`
	Certifications []Certification   `json:"certifications"`
	Endorsements   []Endorsement     `json:"endorsements"`
	Feedbacks      []FeedbackItem    `json:"feedbacks"`
	SessionAction  SessionAction     `json:"sessionAction"`
}

// CollaboratorCard is the header section of the page.
type CollaboratorCard struct {
	Collaborator
	Initial string `json:"initial"`
}

type FeedbackItem struct {
	Feedback
	Stars int `json:"stars"`
}

// SessionAction describes the request-session button.
type SessionAction struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
	Sent     bool   `json:"sent"`
}

// NavigationState carries a collaborator handed over from a previous page.
type NavigationState struct {
	Collaborator *Collaborator `json:"collaborator"`
}
