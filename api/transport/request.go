package transport

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type TaskRequest struct {
	Name       string `json:"name"`
	DueDate    string `json:"due_date"`
	Priority   int    `json:"priority"`
	PostedDate string `json:"posted_date"`
}

type RefreshRequest struct {
	TTL int `json:"ttl_seconds"`
}
