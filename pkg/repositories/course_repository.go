package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/college-hq/advising-engine/pkg/docstore"
	"github.com/college-hq/advising-engine/pkg/models"
)

const (
	coursesCollection      = "courses"
	requirementsCollection = "degree_requirements"
	flowchartsCollection   = "flowcharts"
)

// CourseRepository provides read access to the course catalog, degree
// requirement, and flowchart collections. All three are populated by an
// out-of-band ingestion pipeline.
type CourseRepository interface {
	GetByID(ctx context.Context, courseID string) (*models.Course, error)
	GetByMajor(ctx context.Context, university, major string, limit int) ([]models.Course, error)
	GetByDepartment(ctx context.Context, university, department string, limit int) ([]models.Course, error)
	GetDegreeRequirements(ctx context.Context, majorID string) (*models.DegreeRequirement, error)
	GetFlowchart(ctx context.Context, flowchartID string) (*models.CourseFlowchart, error)
}

type courseRepository struct {
	store docstore.Store
}

// NewCourseRepository creates a CourseRepository backed by the given store.
func NewCourseRepository(store docstore.Store) CourseRepository {
	return &courseRepository{store: store}
}

var _ CourseRepository = (*courseRepository)(nil)

func (r *courseRepository) GetByID(ctx context.Context, courseID string) (*models.Course, error) {
	raw, err := r.store.Get(ctx, coursesCollection, courseID)
	if err != nil {
		return nil, err
	}

	var course models.Course
	if err := json.Unmarshal(raw, &course); err != nil {
		return nil, fmt.Errorf("failed to decode course %s: %w", courseID, err)
	}
	return &course, nil
}

// GetByMajor scans the catalog for courses at the given university that
// list the major in required_for_majors. University matches the stored
// display name exactly.
func (r *courseRepository) GetByMajor(ctx context.Context, university, major string, limit int) ([]models.Course, error) {
	return r.scanCourses(ctx, limit, func(c *models.Course) bool {
		if c.University != university {
			return false
		}
		for _, m := range c.RequiredForMajors {
			if m == major {
				return true
			}
		}
		return false
	})
}

// GetByDepartment scans the catalog for courses at the given university
// in the named department; a department prefix on the course code also
// matches ("CSC" finds "CSC 101").
func (r *courseRepository) GetByDepartment(ctx context.Context, university, department string, limit int) ([]models.Course, error) {
	prefix := strings.ToLower(strings.TrimSpace(department))
	return r.scanCourses(ctx, limit, func(c *models.Course) bool {
		if c.University != university {
			return false
		}
		if strings.EqualFold(c.Department, department) {
			return true
		}
		return strings.HasPrefix(strings.ToLower(c.Code), prefix)
	})
}

func (r *courseRepository) GetDegreeRequirements(ctx context.Context, majorID string) (*models.DegreeRequirement, error) {
	raw, err := r.store.Get(ctx, requirementsCollection, majorID)
	if err != nil {
		return nil, err
	}

	var req models.DegreeRequirement
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("failed to decode degree requirements %s: %w", majorID, err)
	}
	return &req, nil
}

func (r *courseRepository) GetFlowchart(ctx context.Context, flowchartID string) (*models.CourseFlowchart, error) {
	raw, err := r.store.Get(ctx, flowchartsCollection, flowchartID)
	if err != nil {
		return nil, err
	}

	var flowchart models.CourseFlowchart
	if err := json.Unmarshal(raw, &flowchart); err != nil {
		return nil, fmt.Errorf("failed to decode flowchart %s: %w", flowchartID, err)
	}
	return &flowchart, nil
}

func (r *courseRepository) scanCourses(ctx context.Context, limit int, match func(*models.Course) bool) ([]models.Course, error) {
	courses := []models.Course{}

	err := r.store.Scan(ctx, coursesCollection, func(key string, value []byte) error {
		if limit > 0 && len(courses) >= limit {
			return errScanDone
		}
		var course models.Course
		if err := json.Unmarshal(value, &course); err != nil {
			return fmt.Errorf("failed to decode course %s: %w", key, err)
		}
		if match(&course) {
			courses = append(courses, course)
		}
		return nil
	})
	if err != nil && err != errScanDone {
		return nil, err
	}
	return courses, nil
}

// errScanDone stops a scan early once the limit is reached.
var errScanDone = fmt.Errorf("scan done")
