package chat

// Credentials identify a user at login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the authenticated account profile.
type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Message is a single history entry; Sender is "user" or "ai".
type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Thread summarises a conversation.
type Thread struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type accessResult struct {
	Access string `json:"access"`
}

type askParams struct {
	Message  string `json:"message"`
	ThreadID string `json:"thread_id"`
}

type askResult struct {
	Response string `json:"response"`
}

type historyResult struct {
	History []*Message `json:"history"`
}

// Answer is the reply to a question together with the thread it belongs to.
type Answer struct {
	ThreadID string
	Response string
}
