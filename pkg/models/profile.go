// Package models defines the persisted record types for advising-engine.
package models

import "time"

// StudentProfile is the per-user academic profile record.
// Exactly one profile exists per user id; the id comes from the verified
// token subject and is never client-settable.
type StudentProfile struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	StudentID string `json:"studentId"`

	// University is nil until the student picks an institution.
	University *University `json:"university"`

	College       string `json:"college"`
	Major         string `json:"major"`
	Concentration string `json:"concentration"`
	Minor         string `json:"minor"`

	// AcademicYear is a label like "Freshman".."Senior".
	AcademicYear       string `json:"academicYear"`
	ExpectedGraduation string `json:"expectedGraduation"`

	GPA                    float64 `json:"gpa"`
	TotalCredits           int     `json:"totalCredits"`
	CurrentSemesterCredits int     `json:"currentSemesterCredits"`

	CareerGoals       []string `json:"careerGoals"`
	LearningStyle     string   `json:"learningStyle"`
	AcademicInterests []string `json:"academicInterests"`

	AdvisorName  string `json:"advisorName"`
	AdvisorEmail string `json:"advisorEmail"`
	AdvisorNotes string `json:"advisorNotes"`

	CompletedCourses []string `json:"completedCourses"`
	CurrentCourses   []string `json:"currentCourses"`
	PlannedCourses   []string `json:"plannedCourses"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// University identifies the student's institution.
type University struct {
	Name    string `json:"name"`
	Domain  string `json:"domain,omitempty"`
	Country string `json:"country,omitempty"`
}

// NewDefaultProfile returns a zero-valued profile for the given user id.
// List fields are empty (not nil) so they serialize as [] rather than null.
func NewDefaultProfile(userID string, now time.Time) *StudentProfile {
	return &StudentProfile{
		UserID:            userID,
		CareerGoals:       []string{},
		AcademicInterests: []string{},
		CompletedCourses:  []string{},
		CurrentCourses:    []string{},
		PlannedCourses:    []string{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
