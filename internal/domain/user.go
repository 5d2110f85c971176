package domain

// User is the read-only directory record used for permission checks and
// notification payload enrichment. Account management lives elsewhere.
type User struct {
	ID          int32  `json:"id"`
	Email       string `json:"email"`
	Nickname    string `json:"nickname"`
	AvatarURL   string `json:"avatar_url"`
	DeviceToken string `json:"-"`
	CreatedOn   string `json:"created_on"`
}
