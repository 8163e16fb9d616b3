// Package services holds the business logic composed by the HTTP handlers.
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/college-hq/advising-engine/pkg/models"
	"github.com/college-hq/advising-engine/pkg/repositories"
)

// Relevance search tuning. Strategy order and caps match the observed
// behavior of the advising pipeline.
const (
	majorGroupCourseCap  = 8  // degree-requirement expansion
	flowchartPerTermCap  = 4  // flowchart expansion, per term
	fallbackScanMinimum  = 5  // major fallback scan kicks in below this
	relevantCoursesLimit = 15 // final result cap
)

// courseMentionPattern matches explicit course-code mentions in free text:
// 2-4 letters followed by a 2-4 digit number, case-insensitive, with
// optional whitespace between ("CSC 101", "csc101", "MATH241").
var courseMentionPattern = regexp.MustCompile(`(?i)\b([A-Za-z]{2,4})\s*(\d{2,4})\b`)

// flowchartTerms in catalog order.
var flowchartTerms = []string{"fall", "winter", "spring"}

// academicYearKeys maps profile year labels to flowchart year keys.
var academicYearKeys = map[string]string{
	"freshman":  "year_1",
	"sophomore": "year_2",
	"junior":    "year_3",
	"senior":    "year_4",
}

// NormalizeInstitution maps an institution display name to its short key.
// Any spelling of Cal Poly collapses to "calpoly"; other names are
// lowercased with whitespace and non-alphanumerics stripped. The same
// normalization must be applied everywhere a catalog key is constructed.
func NormalizeInstitution(name string) string {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "cal poly") || strings.Contains(lower, "california polytechnic") {
		return "calpoly"
	}

	var b strings.Builder
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeCourseCode lowercases a course code and strips whitespace:
// "CSC 101" -> "csc101".
func NormalizeCourseCode(code string) string {
	return strings.ToLower(strings.Join(strings.Fields(code), ""))
}

// NormalizeMajor lowercases a major name and joins words with underscores:
// "Computer Science" -> "computer_science".
func NormalizeMajor(major string) string {
	return strings.ToLower(strings.Join(strings.Fields(major), "_"))
}

// CourseKey builds the catalog primary key "{institutionKey}_{courseKey}".
func CourseKey(institution, code string) string {
	return NormalizeInstitution(institution) + "_" + NormalizeCourseCode(code)
}

// MajorKey builds the degree-requirement key "{institutionKey}_{majorKey}".
func MajorKey(institution, major string) string {
	return NormalizeInstitution(institution) + "_" + NormalizeMajor(major)
}

// FlowchartKey builds the flowchart key for a major and catalog year.
func FlowchartKey(institution, major, catalogYear string) string {
	return MajorKey(institution, major) + "_" + catalogYear
}

// ExtractCourseMentions returns the normalized course codes mentioned in
// free text, in order of first appearance, deduplicated.
func ExtractCourseMentions(text string) []string {
	matches := courseMentionPattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	codes := []string{}
	for _, m := range matches {
		code := strings.ToLower(m[1]) + m[2]
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	return codes
}

// FlowchartYearKey maps an academic year label ("Freshman".."Senior") to
// the flowchart year key ("year_1".."year_4"). Returns "" for unknown labels.
func FlowchartYearKey(academicYear string) string {
	return academicYearKeys[strings.ToLower(strings.TrimSpace(academicYear))]
}

// RelevantCourses is the result of a relevance search: the deduplicated
// course list plus the student's degree requirement record (nil when the
// major has no stored requirements) so callers can present requirement
// context without a second round-trip.
type RelevantCourses struct {
	Courses     []models.Course
	Requirement *models.DegreeRequirement
}

// CatalogService answers course catalog queries, including the
// multi-strategy relevance search used by the advising orchestrator.
type CatalogService interface {
	GetCourse(ctx context.Context, courseID string) (*models.Course, error)
	GetByMajor(ctx context.Context, university, major string, limit int) ([]models.Course, error)
	GetByDepartment(ctx context.Context, university, department string, limit int) ([]models.Course, error)
	GetDegreeRequirements(ctx context.Context, majorID string) (*models.DegreeRequirement, error)
	GetFlowchart(ctx context.Context, flowchartID string) (*models.CourseFlowchart, error)

	// FindRelevant gathers courses relevant to a free-text message and a
	// student profile. It is deterministic for fixed inputs, never returns
	// more than 15 courses, and never returns a duplicate course id.
	FindRelevant(ctx context.Context, institution, message string, profile *models.StudentProfile) (*RelevantCourses, error)
}

type catalogService struct {
	courses     repositories.CourseRepository
	catalogYear string
	logger      *zap.Logger
}

// NewCatalogService creates a CatalogService. catalogYear is the current
// catalog year used for flowchart lookups, e.g. "2022-2026".
func NewCatalogService(courses repositories.CourseRepository, catalogYear string, logger *zap.Logger) CatalogService {
	return &catalogService{
		courses:     courses,
		catalogYear: catalogYear,
		logger:      logger.Named("catalog"),
	}
}

var _ CatalogService = (*catalogService)(nil)

func (s *catalogService) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	return s.courses.GetByID(ctx, courseID)
}

func (s *catalogService) GetByMajor(ctx context.Context, university, major string, limit int) ([]models.Course, error) {
	return s.courses.GetByMajor(ctx, university, major, limit)
}

func (s *catalogService) GetByDepartment(ctx context.Context, university, department string, limit int) ([]models.Course, error) {
	return s.courses.GetByDepartment(ctx, university, department, limit)
}

func (s *catalogService) GetDegreeRequirements(ctx context.Context, majorID string) (*models.DegreeRequirement, error) {
	return s.courses.GetDegreeRequirements(ctx, majorID)
}

func (s *catalogService) GetFlowchart(ctx context.Context, flowchartID string) (*models.CourseFlowchart, error) {
	return s.courses.GetFlowchart(ctx, flowchartID)
}

// FindRelevant runs up to four independent gathering strategies and unions
// the results, first occurrence winning:
//  1. explicit course-code mentions in the message
//  2. the first courses of the major's degree-requirement group
//  3. the flowchart terms for the student's academic year
//  4. a catalog scan by major, only if fewer than 5 courses so far
func (s *catalogService) FindRelevant(ctx context.Context, institution, message string, profile *models.StudentProfile) (*RelevantCourses, error) {
	if institution == "" {
		return &RelevantCourses{Courses: []models.Course{}}, nil
	}

	result := &RelevantCourses{Courses: []models.Course{}}
	seen := make(map[string]bool)

	add := func(course *models.Course) {
		if course == nil || seen[course.ID] || len(result.Courses) >= relevantCoursesLimit {
			return
		}
		seen[course.ID] = true
		result.Courses = append(result.Courses, *course)
	}

	// Strategy 1: explicit mentions.
	for _, code := range ExtractCourseMentions(message) {
		courseID := NormalizeInstitution(institution) + "_" + code
		course, err := s.courses.GetByID(ctx, courseID)
		if err != nil {
			continue // not every token pair is a real course
		}
		add(course)
	}

	var major, academicYear string
	if profile != nil {
		major = profile.Major
		academicYear = profile.AcademicYear
	}

	// Strategy 2: degree-requirement expansion.
	if major != "" {
		req, err := s.courses.GetDegreeRequirements(ctx, MajorKey(institution, major))
		if err == nil {
			result.Requirement = req
			if group := req.MajorGroup(); group != nil {
				for i, ref := range group.Courses {
					if i >= majorGroupCourseCap {
						break
					}
					s.addByReference(ctx, institution, ref.CourseID, add)
				}
			}
		} else {
			s.logger.Debug("No degree requirements found",
				zap.String("institution", institution),
				zap.String("major", major))
		}
	}

	// Strategy 3: flowchart expansion for the student's current year.
	if yearKey := FlowchartYearKey(academicYear); yearKey != "" && major != "" {
		flowchart, err := s.courses.GetFlowchart(ctx, FlowchartKey(institution, major, s.catalogYear))
		if err == nil {
			for _, term := range flowchartTerms {
				terms := flowchart.Year(yearKey)
				if terms == nil || terms[term] == nil {
					continue
				}
				for i, ref := range terms[term].Courses {
					if i >= flowchartPerTermCap {
						break
					}
					s.addByReference(ctx, institution, ref.CourseID, add)
				}
			}
		}
	}

	// Strategy 4: major fallback scan when the targeted strategies came
	// up short.
	if len(result.Courses) < fallbackScanMinimum && major != "" {
		courses, err := s.courses.GetByMajor(ctx, institution, major, relevantCoursesLimit)
		if err == nil {
			for i := range courses {
				add(&courses[i])
			}
		}
	}

	return result, nil
}

// addByReference resolves a course reference like "CSC 101" to a full
// catalog record and adds it. Placeholder references ("GE Area B4") fail
// the lookup and are skipped.
func (s *catalogService) addByReference(ctx context.Context, institution, courseRef string, add func(*models.Course)) {
	course, err := s.courses.GetByID(ctx, CourseKey(institution, courseRef))
	if err != nil {
		return
	}
	add(course)
}

// String implements fmt.Stringer for logging.
func (r *RelevantCourses) String() string {
	return fmt.Sprintf("relevant{courses=%d, requirement=%t}", len(r.Courses), r.Requirement != nil)
}
