package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"educonnect/internal/auth"
	"educonnect/internal/courses"
	"educonnect/internal/enrollments"
	"educonnect/internal/grades"
	"educonnect/internal/httpx"
	"educonnect/internal/tasks"
	"educonnect/internal/users"
)

// Pinger reports database reachability; *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Logger     *slog.Logger
	Validator  *auth.Validator
	Metrics    *Metrics
	DB         Pinger
	CORSOrigin string

	Auth        *auth.Handler
	Users       *users.Handler
	Courses     *courses.Handler
	Enrollments *enrollments.Handler
	Tasks       *tasks.Handler
	Grades      *grades.Handler
}

func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(instrument(d.Logger, d.Metrics))

	r.HandleFunc("/healthz", healthz(d.DB)).Methods(http.MethodGet)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)
	}

	// API routes live on the root router: a subrouter would turn method
	// mismatches into 404s.
	const api = "/api/v1"
	authn := auth.Authenticate(d.Validator, d.Logger)
	route := func(path string, p auth.Policy, h http.HandlerFunc, methods ...string) {
		r.Handle(api+path, authn(auth.Authorize(p)(h))).Methods(methods...)
	}
	teacher := auth.RequireRoles(auth.RoleTeacher)
	student := auth.RequireRoles(auth.RoleStudent)

	// Auth
	r.HandleFunc(api+"/auth/register", d.Auth.Register).Methods(http.MethodPost)
	r.HandleFunc(api+"/auth/login", d.Auth.Login).Methods(http.MethodPost)
	route("/auth/me", auth.Authenticated, d.Auth.Me, http.MethodGet)

	// Users
	route("/user", auth.Authenticated, d.Users.List, http.MethodGet)
	route("/user/teachers", auth.Authenticated, d.Users.Teachers, http.MethodGet)
	route("/user/students/course/{courseId:[0-9]+}", auth.RequireRoles(auth.RoleTeacher, auth.RoleStudent),
		d.Users.StudentsNotInCourse, http.MethodGet)
	route("/user/{id}", auth.Authenticated, d.Users.Get, http.MethodGet)
	route("/user/{id}", auth.Authenticated, d.Users.Update, http.MethodPut)
	route("/user/{id}", auth.AdminPolicy, d.Users.Delete, http.MethodDelete)

	// Courses
	route("/course", auth.Authenticated, d.Courses.List, http.MethodGet)
	route("/course", teacher, d.Courses.Create, http.MethodPost)
	route("/course/{id:[0-9]+}", auth.Authenticated, d.Courses.Get, http.MethodGet)
	route("/course/{id:[0-9]+}", teacher, d.Courses.Delete, http.MethodDelete)
	route("/course/{id:[0-9]+}/students", auth.Authenticated, d.Courses.Members, http.MethodGet)
	route("/course/{id:[0-9]+}/students", teacher, d.Courses.AddMembers, http.MethodPost)
	route("/course/{id:[0-9]+}/students", teacher, d.Courses.RemoveMembers, http.MethodDelete)
	route("/course/{id:[0-9]+}/tasks", auth.Authenticated, d.Tasks.ListForCourse, http.MethodGet)
	route("/course/{id:[0-9]+}/students/enrolled", auth.Authenticated, d.Courses.EnrolledStudents, http.MethodGet)
	route("/course/student/{studentId}/courses", student, d.Courses.StudentCourses, http.MethodGet)
	route("/course/teacher/{teacherId}/courses", teacher, d.Courses.TeacherCourses, http.MethodGet)
	route("/course/user/{userId}/courses", auth.Authenticated, d.Courses.UserCourses, http.MethodGet)
	route("/course/{courseId:[0-9]+}/task", teacher, d.Tasks.CreateInCourse, http.MethodPost)
	route("/course/task/{taskId:[0-9]+}/link", auth.Authenticated, d.Grades.SubmitForTask, http.MethodPost)

	// Enrollments
	route("/enrollment", auth.ProfessorPolicy, d.Enrollments.List, http.MethodGet)
	route("/enrollment", auth.ProfessorPolicy, d.Enrollments.Create, http.MethodPost)
	route("/enrollment/{id:[0-9]+}", auth.ProfessorPolicy, d.Enrollments.Delete, http.MethodDelete)

	// Tasks
	route("/task", auth.Authenticated, d.Tasks.List, http.MethodGet)
	route("/task", auth.ProfessorPolicy, d.Tasks.Create, http.MethodPost)
	route("/task/{id:[0-9]+}", auth.Authenticated, d.Tasks.Get, http.MethodGet)
	route("/task/{id:[0-9]+}", auth.ProfessorPolicy, d.Tasks.Update, http.MethodPut)
	route("/task/{id:[0-9]+}", auth.ProfessorPolicy, d.Tasks.Delete, http.MethodDelete)

	// Grades
	route("/grade", auth.Authenticated, d.Grades.List, http.MethodGet)
	route("/grade/submit", student, d.Grades.Submit, http.MethodPost)
	route("/grade/grade", teacher, d.Grades.Grade, http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.NotFound(w, "no such route")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	return withCORS(d.CORSOrigin, r)
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
