package comment

// Comment : document comments/{postID}/{id}. Append-only : jamais édité
// ni supprimé par ce cœur.
type Comment struct {
	ID        string `json:"id"`
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"`
}
