package nav

import "examdesk/internal/client/api"

const (
	LoginPath = "/login"
	RootPath  = "/"
)

type Item struct {
	Label string
	Path  string
}

// Items is the navigation menu for a role, in display order. Unknown roles
// get nothing.
func Items(role api.Role) []Item {
	switch role {
	case api.RoleStudent:
		return []Item{
			{Label: "Dashboard", Path: "/student/dashboard"},
			{Label: "My Grades", Path: "/student/grades"},
			{Label: "Resit Exams", Path: "/student/resit-exams"},
			{Label: "Declare Resit", Path: "/student/declare-resit"},
			{Label: "Exam Schedule", Path: "/student/exam-schedule"},
		}
	case api.RoleInstructor:
		return []Item{
			{Label: "Dashboard", Path: "/instructor/dashboard"},
			{Label: "Submit Grades", Path: "/instructor/submit-grades"},
			{Label: "Resit Exam Details", Path: "/instructor/resit-details"},
			{Label: "Resit Participants", Path: "/instructor/resit-participants"},
		}
	case api.RoleSecretary:
		return []Item{
			{Label: "Dashboard", Path: "/secretary/dashboard"},
			{Label: "Upload Schedule", Path: "/secretary/upload-schedule"},
		}
	default:
		return nil
	}
}

// DashboardPath is the landing route after login. Unrecognized roles fall
// back to the root route.
func DashboardPath(role api.Role) string {
	switch role {
	case api.RoleStudent:
		return "/student/dashboard"
	case api.RoleInstructor:
		return "/instructor/dashboard"
	case api.RoleSecretary:
		return "/secretary/dashboard"
	default:
		return RootPath
	}
}

// LoginRedirect decides what the login page does with an existing session:
// authenticated users with a known role are sent to their dashboard,
// everyone else stays put.
func LoginRedirect(user *api.User) (string, bool) {
	if user == nil {
		return "", false
	}
	target := DashboardPath(user.Role)
	if target == RootPath {
		return "", false
	}
	return target, true
}

// RequireSession gates a protected page. When no session is present it
// returns the notice to render instead of the page.
func RequireSession(user *api.User) (string, bool) {
	if user == nil {
		return "You must be logged in to view this page.", false
	}
	return "", true
}
