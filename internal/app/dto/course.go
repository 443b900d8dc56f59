package dto

import (
	"time"

	domaincourse "memberhub/internal/domain/course"
)

type Lesson struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	VideoURL string `json:"video_url,omitempty"`
	Position int    `json:"position"`
}

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	Status      string    `json:"status"`
	Lessons     []Lesson  `json:"lessons"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewCourse(c *domaincourse.Course) Course {
	lessons := make([]Lesson, 0, len(c.Lessons))
	for _, lesson := range c.Lessons {
		lessons = append(lessons, Lesson{
			ID:       lesson.ID,
			Title:    lesson.Title,
			Body:     lesson.Body,
			VideoURL: lesson.VideoURL,
			Position: lesson.Position,
		})
	}
	return Course{
		ID:          string(c.ID),
		Title:       c.Title,
		Description: c.Description,
		CoverURL:    c.CoverURL,
		Status:      string(c.Status),
		Lessons:     lessons,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

type CourseList struct {
	Items []Course `json:"items"`
}

func NewCourseList(courses []*domaincourse.Course) CourseList {
	list := CourseList{Items: make([]Course, 0, len(courses))}
	for _, c := range courses {
		list.Items = append(list.Items, NewCourse(c))
	}
	return list
}
