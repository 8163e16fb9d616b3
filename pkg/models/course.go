package models

// Course is a catalog record keyed by a composite institution+course-code
// identifier ("{institutionKey}_{courseKey}"). Records are populated by an
// out-of-band ingestion pipeline and read-only from this service.
type Course struct {
	ID                string   `json:"university_course_id"`
	University        string   `json:"university"`
	Department        string   `json:"department"`
	Code              string   `json:"course_code"`
	Name              string   `json:"course_name"`
	Units             int      `json:"units"`
	Description       string   `json:"description"`
	Prerequisites     []string `json:"prerequisites"`
	DifficultyLevel   string   `json:"difficulty_level"`
	TypicalQuarters   []string `json:"typical_quarters"`
	RequiredForMajors []string `json:"required_for_majors"`
	LastUpdated       string   `json:"last_updated,omitempty"`
}

// DegreeRequirement is keyed by "{institutionKey}_{majorKey}".
type DegreeRequirement struct {
	ID         string             `json:"university_major_id"`
	University string             `json:"university"`
	Major      string             `json:"major"`
	TotalUnits int                `json:"total_units"`
	Groups     []RequirementGroup `json:"requirement_groups"`
}

// RequirementGroup is a nested requirement bucket (major courses,
// support courses, general education, ...).
type RequirementGroup struct {
	ID         string              `json:"requirement_id"`
	Name       string              `json:"name"`
	Category   string              `json:"category"` // "major", "support", "general_education"
	UnitsTotal int                 `json:"units_required"`
	Courses    []RequirementCourse `json:"courses"`
}

// RequirementCourse is a course reference inside a requirement group.
type RequirementCourse struct {
	CourseID string `json:"course_id"`
	Name     string `json:"course_name,omitempty"`
	Units    int    `json:"units,omitempty"`
}

// MajorGroup returns the group with category "major", or nil.
func (d *DegreeRequirement) MajorGroup() *RequirementGroup {
	for i := range d.Groups {
		if d.Groups[i].Category == "major" {
			return &d.Groups[i]
		}
	}
	return nil
}

// CourseFlowchart is a per-major, per-catalog-year plan keyed by
// "{institutionKey}_{majorKey}_{catalogYear}". Years maps "year_1".."year_4"
// to terms, each term listing recommended courses.
type CourseFlowchart struct {
	ID          string                      `json:"university_major_id"`
	University  string                      `json:"university"`
	Major       string                      `json:"major"`
	CatalogYear string                      `json:"catalog_year"`
	Years       map[string]map[string]*Term `json:"flowchart"`
}

// Term is one quarter of a flowchart year.
type Term struct {
	Period     string            `json:"period"`
	TotalUnits int               `json:"total_units"`
	Courses    []FlowchartCourse `json:"courses"`
}

// FlowchartCourse is a course reference inside a flowchart term.
type FlowchartCourse struct {
	CourseID      string   `json:"course_id"`
	Name          string   `json:"course_name"`
	Units         int      `json:"units"`
	Category      string   `json:"category"` // "major", "support", "ge"
	Prerequisites []string `json:"prerequisites"`
}

// Year returns the terms for a flowchart year key like "year_2", or nil.
func (f *CourseFlowchart) Year(key string) map[string]*Term {
	if f.Years == nil {
		return nil
	}
	return f.Years[key]
}
