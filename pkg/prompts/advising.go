// Package prompts builds the system prompts sent to the generative AI
// backend.
package prompts

import (
	"fmt"
	"strings"

	"github.com/college-hq/advising-engine/pkg/models"
)

// BuildAdvisingSystemPrompt renders the system prompt for an advising turn.
// Student fields that are empty or unknown are omitted line-wise; the
// degree-requirement unit breakdown and per-course context blocks are
// included only when records were found.
func BuildAdvisingSystemPrompt(profile *models.StudentProfile, requirement *models.DegreeRequirement, courses []models.Course) string {
	var prompt strings.Builder

	prompt.WriteString("You are an experienced academic advisor helping a college student plan their coursework. ")
	prompt.WriteString("Give specific, actionable advice grounded in the course and degree information below. ")
	prompt.WriteString("If information is missing, say so rather than guessing.\n\n")

	prompt.WriteString("## Student\n")
	name := strings.TrimSpace(profile.FirstName + " " + profile.LastName)
	if name != "" {
		prompt.WriteString(fmt.Sprintf("Name: %s\n", name))
	}
	if profile.University != nil && profile.University.Name != "" {
		prompt.WriteString(fmt.Sprintf("University: %s\n", profile.University.Name))
	}
	if profile.Major != "" {
		prompt.WriteString(fmt.Sprintf("Major: %s\n", profile.Major))
	}
	if profile.Concentration != "" {
		prompt.WriteString(fmt.Sprintf("Concentration: %s\n", profile.Concentration))
	}
	if profile.AcademicYear != "" {
		prompt.WriteString(fmt.Sprintf("Academic year: %s\n", profile.AcademicYear))
	}
	if profile.GPA > 0 {
		prompt.WriteString(fmt.Sprintf("GPA: %.2f\n", profile.GPA))
	}
	if profile.TotalCredits > 0 {
		prompt.WriteString(fmt.Sprintf("Completed credits: %d\n", profile.TotalCredits))
	}
	if len(profile.CompletedCourses) > 0 {
		prompt.WriteString(fmt.Sprintf("Completed courses: %s\n", strings.Join(profile.CompletedCourses, ", ")))
	}
	if len(profile.CurrentCourses) > 0 {
		prompt.WriteString(fmt.Sprintf("Current courses: %s\n", strings.Join(profile.CurrentCourses, ", ")))
	}
	if len(profile.CareerGoals) > 0 {
		prompt.WriteString(fmt.Sprintf("Career goals: %s\n", strings.Join(profile.CareerGoals, ", ")))
	}

	if requirement != nil {
		prompt.WriteString("\n## Degree Requirements\n")
		prompt.WriteString(fmt.Sprintf("%s at %s: %d total units\n",
			requirement.Major, requirement.University, requirement.TotalUnits))
		for _, group := range requirement.Groups {
			prompt.WriteString(fmt.Sprintf("- %s: %d units (%d courses)\n",
				group.Name, group.UnitsTotal, len(group.Courses)))
		}
	}

	if len(courses) > 0 {
		prompt.WriteString("\n## Relevant Courses\n")
		for _, course := range courses {
			writeCourseBlock(&prompt, &course)
		}
	}

	return prompt.String()
}

func writeCourseBlock(prompt *strings.Builder, course *models.Course) {
	prompt.WriteString(fmt.Sprintf("\n### %s: %s\n", course.Code, course.Name))
	if course.Description != "" {
		prompt.WriteString(course.Description + "\n")
	}
	prompt.WriteString(fmt.Sprintf("Units: %d\n", course.Units))
	if course.DifficultyLevel != "" {
		prompt.WriteString(fmt.Sprintf("Difficulty: %s\n", course.DifficultyLevel))
	}
	if len(course.Prerequisites) > 0 {
		prompt.WriteString(fmt.Sprintf("Prerequisites: %s\n", strings.Join(course.Prerequisites, ", ")))
	}
	if len(course.TypicalQuarters) > 0 {
		prompt.WriteString(fmt.Sprintf("Offered: %s\n", strings.Join(course.TypicalQuarters, ", ")))
	}
	if len(course.RequiredForMajors) > 0 {
		prompt.WriteString(fmt.Sprintf("Required for: %s\n", strings.Join(course.RequiredForMajors, ", ")))
	}
}
