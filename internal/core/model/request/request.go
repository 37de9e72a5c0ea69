package request

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TaskRequest is the full representation accepted on create and replace.
// User stays a string so an empty or non-numeric reference is reported as a
// field error instead of a decoding failure.
type TaskRequest struct {
	Title       string `json:"title" validate:"required,max=150"`
	Description string `json:"description" validate:"required"`
	Datetime    string `json:"datetime" validate:"required,iso_datetime"`
	Done        bool   `json:"done"`
	User        string `json:"user" validate:"required,numeric"`
}

type UserRequest struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max_bytes=72"`
	Name     string `json:"name" validate:"max=150"`
	LastName string `json:"last_name" validate:"max=150"`
}
