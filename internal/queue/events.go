package queue

// Routing keys on the auth.events / task.events topic exchanges.
const (
	AuthExchange = "auth.events"
	TaskExchange = "task.events"

	KeyUserRegistered = "user.registered"
	KeyUserLoggedIn   = "user.loggedin"
	KeyInviteCreated  = "invite.created"
	KeyTaskCreated    = "task.created"
)

type UserRegistered struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Provider string `json:"provider"` // "local" | "google"
}

type UserLoggedIn struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type InviteCreated struct {
	InviteID string `json:"invite_id"`
	Email    string `json:"email"`
}

type TaskCreated struct {
	TaskID string `json:"task_id"`
	UserID string `json:"user_id"`
	Title  string `json:"title"`
}
