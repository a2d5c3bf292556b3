package services

import (
	"context"
	"fmt"

	"github.com/collabhub/backend/internal/models"
)

// Fixture is the seed file layout: collaborators with their sub-collections.
type Fixture struct {
	Collaborators []FixtureCollaborator `json:"collaborators"`
}

type FixtureCollaborator struct {
	Collaborator   models.Collaborator    `json:"collaborator"`
	Certifications []models.Certification `json:"certifications"`
	Endorsements   []models.Endorsement   `json:"endorsements"`
	Feedbacks      []models.Feedback      `json:"feedbacks"`
}

type SeedStats struct {
	Collaborators  int
	Certifications int
	Endorsements   int
	Feedbacks      int
}

// SeedFixture writes every record in f through seeder. It stops at the first
// failed write.
func SeedFixture(ctx context.Context, seeder Seeder, f *Fixture) (SeedStats, error) {
	var stats SeedStats
	for i := range f.Collaborators {
		fc := &f.Collaborators[i]
		id := fc.Collaborator.ID
		if id == "" {
			return stats, fmt.Errorf("collaborator %d: %w", i, ErrStoreBadInput)
		}
		if err := seeder.PutCollaborator(ctx, &fc.Collaborator); err != nil {
			return stats, fmt.Errorf("put collaborator %s: %w", id, err)
		}
		stats.Collaborators++

		for j := range fc.Certifications {
			if err := seeder.PutCertification(ctx, id, &fc.Certifications[j]); err != nil {
				return stats, fmt.Errorf("put certification for %s: %w", id, err)
			}
			stats.Certifications++
		}
		for j := range fc.Endorsements {
			if err := seeder.PutEndorsement(ctx, id, &fc.Endorsements[j]); err != nil {
				return stats, fmt.Errorf("put endorsement for %s: %w", id, err)
			}
			stats.Endorsements++
		}
		for j := range fc.Feedbacks {
			if err := seeder.PutFeedback(ctx, id, &fc.Feedbacks[j]); err != nil {
				return stats, fmt.Errorf("put feedback for %s: %w", id, err)
			}
			stats.Feedbacks++
		}
	}
	return stats, nil
}
