package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-enroll-api/internal/models"
	appErrors "github.com/noah-isme/campus-enroll-api/pkg/errors"
)

type mockCourseReader struct {
	courses map[string]models.Course
	byID    int
}

func (m *mockCourseReader) List(ctx context.Context) ([]models.Course, error) {
	out := make([]models.Course, 0, len(m.courses))
	for _, c := range m.courses {
		out = append(out, c)
	}
	return out, nil
}

func (m *mockCourseReader) FindByID(ctx context.Context, id string) (*models.Course, error) {
	m.byID++
	c, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (m *mockCourseReader) FindByCode(ctx context.Context, code string) (*models.Course, error) {
	for _, c := range m.courses {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mapCache struct {
	entries map[string]models.Course
	hits    int
	sets    int
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string]models.Course)}
}

func (c *mapCache) Get(ctx context.Context, key string, dest interface{}) error {
	cached, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	c.hits++
	*dest.(*models.Course) = cached
	return nil
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.sets++
	c.entries[key] = *value.(*models.Course)
	return nil
}

func TestCourseGetPopulatesAndServesCache(t *testing.T) {
	reader := &mockCourseReader{courses: map[string]models.Course{
		"course-1": {ID: "course-1", Code: "CS101", Capacity: 30},
	}}
	cache := newMapCache()
	svc := NewCourseService(reader, cache, time.Minute, nil)

	first, err := svc.Get(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, "CS101", first.Code)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.Get(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, cache.hits)
	assert.Equal(t, 1, reader.byID, "cache hit must not reach storage")
}

func TestCourseGetWithoutCache(t *testing.T) {
	reader := &mockCourseReader{courses: map[string]models.Course{
		"course-1": {ID: "course-1", Code: "CS101"},
	}}
	svc := NewCourseService(reader, nil, 0, nil)

	course, err := svc.Get(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, "course-1", course.ID)
}

func TestCourseGetNotFound(t *testing.T) {
	svc := NewCourseService(&mockCourseReader{courses: map[string]models.Course{}}, nil, 0, nil)

	_, err := svc.Get(context.Background(), "missing")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestCourseGetByCode(t *testing.T) {
	reader := &mockCourseReader{courses: map[string]models.Course{
		"course-1": {ID: "course-1", Code: "MATH201"},
	}}
	svc := NewCourseService(reader, nil, 0, nil)

	course, err := svc.GetByCode(context.Background(), "MATH201")
	require.NoError(t, err)
	assert.Equal(t, "course-1", course.ID)

	_, err = svc.GetByCode(context.Background(), "NOPE")
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
