package router

import "tasktracker/internal/client/session"

type View int

const (
	ViewLoading View = iota
	ViewHome
	ViewLogin
	ViewRegister
	ViewTasks
	ViewNotFound
)

const (
	PathHome     = "/"
	PathLogin    = "/login"
	PathRegister = "/register"
	PathTasks    = "/tasks"
)

func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewHome:
		return "home"
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewTasks:
		return "tasks"
	default:
		return "not found"
	}
}

// Resolve picks the view to render for the requested path. Nothing is routed until
// the session has resolved.
func Resolve(s session.Session, path string) View {
	if s.Status == session.StatusLoading {
		return ViewLoading
	}

	authenticated := s.IsAuthenticated()

	switch path {
	case PathHome:
		if authenticated {
			return ViewTasks
		}

		return ViewHome
	case PathLogin:
		if authenticated {
			return ViewTasks
		}

		return ViewLogin
	case PathRegister:
		if authenticated {
			return ViewTasks
		}

		return ViewRegister
	case PathTasks:
		if authenticated {
			return ViewTasks
		}

		return ViewLogin
	default:
		return ViewNotFound
	}
}
