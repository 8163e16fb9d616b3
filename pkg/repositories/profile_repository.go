// Package repositories provides data access over the document store.
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/college-hq/advising-engine/pkg/apperrors"
	"github.com/college-hq/advising-engine/pkg/docstore"
	"github.com/college-hq/advising-engine/pkg/models"
)

const profilesCollection = "profiles"

// ProfileRepository provides data access for student profile records.
type ProfileRepository interface {
	// Get returns the stored profile without side effects.
	Get(ctx context.Context, userID string) (*models.StudentProfile, error)

	// GetOrCreate returns the stored profile, synthesizing and persisting a
	// zero-valued default on first read. The bool reports whether the
	// profile was created by this call.
	GetOrCreate(ctx context.Context, userID string) (*models.StudentProfile, bool, error)

	// Create persists a fresh default profile merged with the supplied
	// fields. Returns apperrors.ErrConflict if a profile already exists.
	Create(ctx context.Context, userID string, fields map[string]any) (*models.StudentProfile, error)

	// Put shallow-merges the supplied fields over the existing record (or a
	// fresh default when absent), stamps updatedAt, and stores the result
	// wholesale. Any client-supplied user id field is discarded.
	Put(ctx context.Context, userID string, fields map[string]any) (*models.StudentProfile, error)

	// Delete removes the profile. Deleting an absent profile is not an error.
	Delete(ctx context.Context, userID string) error
}

type profileRepository struct {
	store docstore.Store
	now   func() time.Time
}

// NewProfileRepository creates a ProfileRepository backed by the given store.
func NewProfileRepository(store docstore.Store) ProfileRepository {
	return &profileRepository{store: store, now: time.Now}
}

var _ ProfileRepository = (*profileRepository)(nil)

func (r *profileRepository) Get(ctx context.Context, userID string) (*models.StudentProfile, error) {
	raw, err := r.store.Get(ctx, profilesCollection, userID)
	if err != nil {
		return nil, err
	}
	return decodeProfile(raw)
}

func (r *profileRepository) GetOrCreate(ctx context.Context, userID string) (*models.StudentProfile, bool, error) {
	var profile *models.StudentProfile
	var created bool

	err := r.store.Update(ctx, profilesCollection, userID, func(current []byte) ([]byte, error) {
		if current != nil {
			p, err := decodeProfile(current)
			if err != nil {
				return nil, err
			}
			profile = p
			// Write back canonical field names in case the row carried
			// legacy spellings from the historical pipeline.
			return json.Marshal(p)
		}

		created = true
		profile = models.NewDefaultProfile(userID, r.now().UTC())
		return json.Marshal(profile)
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get or create profile: %w", err)
	}
	return profile, created, nil
}

func (r *profileRepository) Create(ctx context.Context, userID string, fields map[string]any) (*models.StudentProfile, error) {
	var profile *models.StudentProfile

	err := r.store.Update(ctx, profilesCollection, userID, func(current []byte) ([]byte, error) {
		if current != nil {
			return nil, apperrors.ErrConflict
		}
		p, err := mergeProfile(models.NewDefaultProfile(userID, r.now().UTC()), fields, r.now().UTC())
		if err != nil {
			return nil, err
		}
		profile = p
		return json.Marshal(p)
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, nil
}

func (r *profileRepository) Put(ctx context.Context, userID string, fields map[string]any) (*models.StudentProfile, error) {
	var profile *models.StudentProfile

	err := r.store.Update(ctx, profilesCollection, userID, func(current []byte) ([]byte, error) {
		base := models.NewDefaultProfile(userID, r.now().UTC())
		if current != nil {
			p, err := decodeProfile(current)
			if err != nil {
				return nil, err
			}
			base = p
		}

		p, err := mergeProfile(base, fields, r.now().UTC())
		if err != nil {
			return nil, err
		}
		profile = p
		return json.Marshal(p)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

func (r *profileRepository) Delete(ctx context.Context, userID string) error {
	return r.store.Delete(ctx, profilesCollection, userID)
}

// mergeProfile shallow-merges fields over base. The user id and timestamps
// are never client-settable.
func mergeProfile(base *models.StudentProfile, fields map[string]any, now time.Time) (*models.StudentProfile, error) {
	baseJSON, err := json.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal base profile: %w", err)
	}

	var merged map[string]any
	if err := json.Unmarshal(baseJSON, &merged); err != nil {
		return nil, fmt.Errorf("failed to unmarshal base profile: %w", err)
	}

	for key, value := range fields {
		switch key {
		case "userId", "user_id", "createdAt", "created_at", "updatedAt", "updated_at":
			continue
		}
		merged[canonicalProfileField(key)] = value
	}

	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal merged profile: %w", err)
	}

	var profile models.StudentProfile
	if err := json.Unmarshal(mergedJSON, &profile); err != nil {
		return nil, fmt.Errorf("%w: malformed profile fields", apperrors.ErrValidation)
	}

	profile.UserID = base.UserID
	profile.CreatedAt = base.CreatedAt
	profile.UpdatedAt = now
	ensureProfileLists(&profile)
	return &profile, nil
}

// decodeProfile reads a stored profile row, tolerating the legacy
// snake_case field spellings written by the historical ingestion pipeline.
func decodeProfile(raw []byte) (*models.StudentProfile, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode profile document: %w", err)
	}

	for legacy, canonical := range legacyProfileFields {
		value, ok := doc[legacy]
		if !ok {
			continue
		}
		if _, exists := doc[canonical]; !exists {
			doc[canonical] = value
		}
		delete(doc, legacy)
	}

	// Historical rows store university as a plain string plus separate
	// domain/country fields; fold those into the canonical object.
	if raw, ok := doc["university"]; ok {
		var name string
		if err := json.Unmarshal(raw, &name); err == nil {
			delete(doc, "university")
			if name != "" {
				uni := models.University{Name: name}
				if d, ok := doc["university_domain"]; ok {
					_ = json.Unmarshal(d, &uni.Domain)
				}
				if c, ok := doc["university_country"]; ok {
					_ = json.Unmarshal(c, &uni.Country)
				}
				encoded, err := json.Marshal(uni)
				if err != nil {
					return nil, fmt.Errorf("failed to encode university: %w", err)
				}
				doc["university"] = encoded
			}
		}
	}
	delete(doc, "university_domain")
	delete(doc, "university_country")

	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize profile document: %w", err)
	}

	var profile models.StudentProfile
	if err := json.Unmarshal(normalized, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	ensureProfileLists(&profile)
	return &profile, nil
}

// legacyProfileFields maps historical snake_case spellings to canonical names.
var legacyProfileFields = map[string]string{
	"user_id":           "userId",
	"first_name":        "firstName",
	"last_name":         "lastName",
	"completed_courses": "completedCourses",
	"current_courses":   "currentCourses",
	"planned_courses":   "plannedCourses",
	"total_credits":     "totalCredits",
	"currentGPA":        "gpa",
}

func canonicalProfileField(key string) string {
	if canonical, ok := legacyProfileFields[key]; ok {
		return canonical
	}
	return key
}

func ensureProfileLists(p *models.StudentProfile) {
	if p.CareerGoals == nil {
		p.CareerGoals = []string{}
	}
	if p.AcademicInterests == nil {
		p.AcademicInterests = []string{}
	}
	if p.CompletedCourses == nil {
		p.CompletedCourses = []string{}
	}
	if p.CurrentCourses == nil {
		p.CurrentCourses = []string{}
	}
	if p.PlannedCourses == nil {
		p.PlannedCourses = []string{}
	}
}
