package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
)

type catalogMock struct {
	filter models.CourseFilter
	active *models.Semester
}

func (m *catalogMock) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	m.filter = filter
	return []models.Course{{ID: "c1", Code: "BIO1"}}, nil
}

func (m *catalogMock) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
}

func (m *catalogMock) ListClassrooms(ctx context.Context) ([]models.Classroom, error) {
	return []models.Classroom{{ID: "r1", Name: "Lab A"}}, nil
}

func (m *catalogMock) ListSpecializations(ctx context.Context) ([]models.Specialization, error) {
	return []models.Specialization{{ID: "sp1", Name: "Science"}}, nil
}

func (m *catalogMock) ListRoomTypes(ctx context.Context) ([]models.RoomType, error) {
	return []models.RoomType{{ID: "rt1", Name: "Lab"}}, nil
}

func (m *catalogMock) ActiveSemester(ctx context.Context) (*models.Semester, error) {
	if m.active == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no active semester found")
	}
	return m.active, nil
}

func (m *catalogMock) ListSemesters(ctx context.Context) ([]models.Semester, error) {
	return []models.Semester{}, nil
}

type teacherReaderMock struct{}

func (teacherReaderMock) List(ctx context.Context) ([]models.Teacher, error) {
	return []models.Teacher{{ID: "t1", FirstName: "Grace"}}, nil
}

func (teacherReaderMock) Get(ctx context.Context, id string) (*models.Teacher, error) {
	return &models.Teacher{ID: id}, nil
}

type studentReaderMock struct {
	filter models.StudentFilter
}

func (m *studentReaderMock) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	m.filter = filter
	return []models.Student{{ID: "s1"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (m *studentReaderMock) Get(ctx context.Context, id string) (*models.Student, error) {
	return &models.Student{ID: id}, nil
}

func newCatalogRouter(catalog *catalogMock, students *studentReaderMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &CatalogHandler{catalog: catalog, teachers: teacherReaderMock{}}
	sh := &StudentHandler{students: students}
	router := gin.New()
	router.GET("/courses", h.ListCourses)
	router.GET("/courses/:id", h.GetCourse)
	router.GET("/teachers", h.ListTeachers)
	router.GET("/classrooms", h.ListClassrooms)
	router.GET("/specializations", h.ListSpecializations)
	router.GET("/semesters/active", h.ActiveSemester)
	router.GET("/students", sh.List)
	router.GET("/students/:id", sh.Get)
	return router
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestCatalogHandlerCourses(t *testing.T) {
	catalog := &catalogMock{}
	router := newCatalogRouter(catalog, &studentReaderMock{})

	w := get(router, "/courses?semesterOrder=2&search=bio")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, catalog.filter.SemesterOrder)
	assert.Equal(t, 2, *catalog.filter.SemesterOrder)
	assert.Equal(t, "bio", catalog.filter.Search)

	assert.Equal(t, http.StatusBadRequest, get(router, "/courses?semesterOrder=two").Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/courses/c9").Code)
}

func TestCatalogHandlerReferenceLists(t *testing.T) {
	router := newCatalogRouter(&catalogMock{}, &studentReaderMock{})

	assert.Contains(t, get(router, "/teachers").Body.String(), `"first_name":"Grace"`)
	assert.Contains(t, get(router, "/classrooms").Body.String(), `"name":"Lab A"`)

	w := get(router, "/specializations")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"room_types"`)
}

func TestCatalogHandlerActiveSemester(t *testing.T) {
	catalog := &catalogMock{}
	router := newCatalogRouter(catalog, &studentReaderMock{})
	assert.Equal(t, http.StatusNotFound, get(router, "/semesters/active").Code)

	catalog.active = &models.Semester{ID: "sem-1", Name: "Spring"}
	w := get(router, "/semesters/active")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"sem-1"`)
}

func TestStudentHandlerList(t *testing.T) {
	students := &studentReaderMock{}
	router := newCatalogRouter(&catalogMock{}, students)

	w := get(router, "/students?gradeLevel=10&page=2&limit=5&search=%20ada%20")
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, students.filter.GradeLevel)
	assert.Equal(t, 10, *students.filter.GradeLevel)
	assert.Equal(t, 2, students.filter.Page)
	assert.Equal(t, 5, students.filter.PageSize)
	assert.Equal(t, "ada", students.filter.Search)
	assert.Contains(t, w.Body.String(), `"pagination"`)

	assert.Equal(t, http.StatusBadRequest, get(router, "/students?gradeLevel=ten").Code)
	assert.Contains(t, get(router, "/students/s7").Body.String(), `"id":"s7"`)
}
