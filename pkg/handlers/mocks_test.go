package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/college-hq/advising-engine/pkg/apperrors"
	"github.com/college-hq/advising-engine/pkg/auth"
	"github.com/college-hq/advising-engine/pkg/models"
	"github.com/college-hq/advising-engine/pkg/services"
)

// openAuth returns a disabled auth middleware so handler tests exercise
// routing and payloads without tokens.
func openAuth() *auth.Middleware {
	return auth.NewMiddleware(auth.NewAuthService(nil, zap.NewNop()), false, zap.NewNop())
}

// mockAdvisingService is a function-field mock of services.AdvisingService.
type mockAdvisingService struct {
	AdviseFunc func(ctx context.Context, userID, message, conversationID string) (*services.AdvisingResponse, error)
}

func (m *mockAdvisingService) Advise(ctx context.Context, userID, message, conversationID string) (*services.AdvisingResponse, error) {
	if m.AdviseFunc != nil {
		return m.AdviseFunc(ctx, userID, message, conversationID)
	}
	return &services.AdvisingResponse{}, nil
}

// mockCatalogService is a function-field mock of services.CatalogService.
type mockCatalogService struct {
	GetCourseFunc             func(ctx context.Context, courseID string) (*models.Course, error)
	GetByMajorFunc            func(ctx context.Context, university, major string, limit int) ([]models.Course, error)
	GetByDepartmentFunc       func(ctx context.Context, university, department string, limit int) ([]models.Course, error)
	GetDegreeRequirementsFunc func(ctx context.Context, majorID string) (*models.DegreeRequirement, error)
	GetFlowchartFunc          func(ctx context.Context, flowchartID string) (*models.CourseFlowchart, error)
	FindRelevantFunc          func(ctx context.Context, institution, message string, profile *models.StudentProfile) (*services.RelevantCourses, error)
}

func (m *mockCatalogService) GetCourse(ctx context.Context, courseID string) (*models.Course, error) {
	if m.GetCourseFunc != nil {
		return m.GetCourseFunc(ctx, courseID)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockCatalogService) GetByMajor(ctx context.Context, university, major string, limit int) ([]models.Course, error) {
	if m.GetByMajorFunc != nil {
		return m.GetByMajorFunc(ctx, university, major, limit)
	}
	return []models.Course{}, nil
}

func (m *mockCatalogService) GetByDepartment(ctx context.Context, university, department string, limit int) ([]models.Course, error) {
	if m.GetByDepartmentFunc != nil {
		return m.GetByDepartmentFunc(ctx, university, department, limit)
	}
	return []models.Course{}, nil
}

func (m *mockCatalogService) GetDegreeRequirements(ctx context.Context, majorID string) (*models.DegreeRequirement, error) {
	if m.GetDegreeRequirementsFunc != nil {
		return m.GetDegreeRequirementsFunc(ctx, majorID)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockCatalogService) GetFlowchart(ctx context.Context, flowchartID string) (*models.CourseFlowchart, error) {
	if m.GetFlowchartFunc != nil {
		return m.GetFlowchartFunc(ctx, flowchartID)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockCatalogService) FindRelevant(ctx context.Context, institution, message string, profile *models.StudentProfile) (*services.RelevantCourses, error) {
	if m.FindRelevantFunc != nil {
		return m.FindRelevantFunc(ctx, institution, message, profile)
	}
	return &services.RelevantCourses{Courses: []models.Course{}}, nil
}

var (
	_ services.AdvisingService = (*mockAdvisingService)(nil)
	_ services.CatalogService  = (*mockCatalogService)(nil)
)
