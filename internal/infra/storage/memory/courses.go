package memory

import (
	"context"
	"sort"
	"sync"

	domaincourse "memberhub/internal/domain/course"
)

type CourseRepository struct {
	mu   sync.RWMutex
	byID map[domaincourse.ID]*domaincourse.Course
}

func NewCourseRepository() *CourseRepository {
	return &CourseRepository{byID: make(map[domaincourse.ID]*domaincourse.Course)}
}

func (r *CourseRepository) Save(ctx context.Context, c *domaincourse.Course) error {
	if c == nil {
		return domaincourse.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[c.ID] = cloneCourse(c)
	return nil
}

func (r *CourseRepository) ByID(ctx context.Context, id domaincourse.ID) (*domaincourse.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byID[id]; ok {
		return cloneCourse(c), nil
	}
	return nil, domaincourse.ErrNotFound
}

func (r *CourseRepository) List(ctx context.Context, onlyPublished bool) ([]*domaincourse.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domaincourse.Course, 0, len(r.byID))
	for _, c := range r.byID {
		if onlyPublished && c.Status != domaincourse.StatusPublished {
			continue
		}
		out = append(out, cloneCourse(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func cloneCourse(c *domaincourse.Course) *domaincourse.Course {
	if c == nil {
		return nil
	}
	copyCourse := *c
	copyCourse.Lessons = append([]domaincourse.Lesson(nil), c.Lessons...)
	return &copyCourse
}

var _ domaincourse.Repository = (*CourseRepository)(nil)
