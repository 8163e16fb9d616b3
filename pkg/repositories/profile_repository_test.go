package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/college-hq/advising-engine/pkg/apperrors"
	"github.com/college-hq/advising-engine/pkg/docstore"
)

func TestProfileRepository_GetOrCreate_FirstReadCreates(t *testing.T) {
	repo := NewProfileRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	profile, isNew, err := repo.GetOrCreate(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if !isNew {
		t.Error("expected isNew on first read")
	}
	if profile.UserID != "user-1" {
		t.Errorf("expected userId user-1, got %q", profile.UserID)
	}
	if profile.CompletedCourses == nil || profile.CareerGoals == nil {
		t.Error("expected list fields to be empty, not nil")
	}

	// Second read finds the persisted record.
	again, isNew, err := repo.GetOrCreate(ctx, "user-1")
	if err != nil {
		t.Fatalf("second GetOrCreate failed: %v", err)
	}
	if isNew {
		t.Error("expected isNew false on second read")
	}
	if !again.CreatedAt.Equal(profile.CreatedAt) {
		t.Errorf("createdAt changed between reads: %v vs %v", profile.CreatedAt, again.CreatedAt)
	}
}

func TestProfileRepository_Get_NoSideEffect(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewProfileRepository(store)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Plain Get must not have created anything.
	if _, err := store.Get(ctx, "profiles", "ghost"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Get created a profile as a side effect: %v", err)
	}
}

func TestProfileRepository_Put_ShallowMerge(t *testing.T) {
	repo := NewProfileRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	first, err := repo.Put(ctx, "user-1", map[string]any{
		"major":        "Computer Science",
		"academicYear": "Sophomore",
		"gpa":          3.4,
	})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if first.Major != "Computer Science" || first.GPA != 3.4 {
		t.Errorf("unexpected merged profile: %+v", first)
	}

	// A second Put with different fields keeps the earlier ones.
	second, err := repo.Put(ctx, "user-1", map[string]any{
		"firstName": "Ada",
		"gpa":       3.6,
	})
	if err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	if second.Major != "Computer Science" {
		t.Errorf("merge lost major: %+v", second)
	}
	if second.FirstName != "Ada" || second.GPA != 3.6 {
		t.Errorf("merge did not apply new fields: %+v", second)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("createdAt must not change on update")
	}
	if !second.UpdatedAt.After(first.UpdatedAt) && !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Error("updatedAt must be stamped on update")
	}
}

func TestProfileRepository_Put_IgnoresProtectedFields(t *testing.T) {
	repo := NewProfileRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	profile, err := repo.Put(ctx, "user-1", map[string]any{
		"userId":    "someone-else",
		"user_id":   "someone-else",
		"createdAt": "1999-01-01T00:00:00Z",
		"major":     "Biology",
	})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if profile.UserID != "user-1" {
		t.Errorf("client overrode userId: %q", profile.UserID)
	}
	if profile.CreatedAt.Year() == 1999 {
		t.Error("client overrode createdAt")
	}
	if profile.Major != "Biology" {
		t.Errorf("legitimate field dropped: %+v", profile)
	}
}

func TestProfileRepository_Put_UniversityObject(t *testing.T) {
	repo := NewProfileRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	profile, err := repo.Put(ctx, "user-1", map[string]any{
		"university": map[string]any{"name": "Cal Poly", "domain": "calpoly.edu"},
	})
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if profile.University == nil || profile.University.Name != "Cal Poly" {
		t.Errorf("university not set: %+v", profile.University)
	}
}

func TestProfileRepository_Put_MalformedFields(t *testing.T) {
	repo := NewProfileRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	_, err := repo.Put(ctx, "user-1", map[string]any{"gpa": "not-a-number"})
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestProfileRepository_Create_Conflict(t *testing.T) {
	repo := NewProfileRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	if _, err := repo.Create(ctx, "user-1", map[string]any{"major": "Physics"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := repo.Create(ctx, "user-1", nil)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestProfileRepository_Delete_Idempotent(t *testing.T) {
	repo := NewProfileRepository(docstore.NewMemoryStore())
	ctx := context.Background()

	if _, _, err := repo.GetOrCreate(ctx, "user-1"); err != nil {
		t.Fatalf("GetOrCreate failed: %v", err)
	}
	if err := repo.Delete(ctx, "user-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := repo.Delete(ctx, "user-1"); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, "user-1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

// Historical rows carry snake_case spellings and a string university; the
// repository reads them as the canonical shape.
func TestProfileRepository_LegacyFieldSpellings(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewProfileRepository(store)
	ctx := context.Background()

	legacy := map[string]any{
		"user_id":            "user-1",
		"first_name":         "Grace",
		"last_name":          "Hopper",
		"completed_courses":  []string{"CSC 101"},
		"current_courses":    []string{"CSC 202"},
		"total_credits":      45,
		"currentGPA":         3.8,
		"university":         "Cal Poly",
		"university_domain":  "calpoly.edu",
		"university_country": "USA",
		"major":              "Computer Science",
	}
	raw, err := json.Marshal(legacy)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "profiles", "user-1", raw); err != nil {
		t.Fatal(err)
	}

	profile, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if profile.FirstName != "Grace" || profile.LastName != "Hopper" {
		t.Errorf("name fields not adapted: %+v", profile)
	}
	if len(profile.CompletedCourses) != 1 || profile.CompletedCourses[0] != "CSC 101" {
		t.Errorf("completed_courses not adapted: %v", profile.CompletedCourses)
	}
	if profile.TotalCredits != 45 {
		t.Errorf("total_credits not adapted: %d", profile.TotalCredits)
	}
	if profile.GPA != 3.8 {
		t.Errorf("currentGPA not adapted: %v", profile.GPA)
	}
	if profile.University == nil || profile.University.Name != "Cal Poly" ||
		profile.University.Domain != "calpoly.edu" || profile.University.Country != "USA" {
		t.Errorf("university not folded into object: %+v", profile.University)
	}
}

func TestProfileRepository_EmptyUniversityStringIsNull(t *testing.T) {
	store := docstore.NewMemoryStore()
	repo := NewProfileRepository(store)
	ctx := context.Background()

	raw, _ := json.Marshal(map[string]any{"user_id": "user-1", "university": ""})
	if err := store.Put(ctx, "profiles", "user-1", raw); err != nil {
		t.Fatal(err)
	}

	profile, err := repo.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if profile.University != nil {
		t.Errorf("expected nil university for empty string, got %+v", profile.University)
	}
}
