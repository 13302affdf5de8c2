package feed

// Post : observation publiée (document posts/{id}).
// Les compteurs et is_liked sont dérivés à la lecture pour la session
// courante, jamais réécrits dans le store.
type Post struct {
	ID             string `json:"id"`
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	AvatarURL      string `json:"avatar_url"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	ScientificName string `json:"scientific_name,omitempty"`
	Observation    string `json:"observation,omitempty"`
	MediaURL       string `json:"media_url,omitempty"`
	Category       string `json:"category"`
	CreatedAt      int64  `json:"created_at"`

	// Dérivés par viewer
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
	IsLiked      bool  `json:"is_liked"`
}

// Like : document likes/{postID}/{userID}.
// La présence du document vaut état "liké" ; il n'est jamais mis à jour.
type Like struct {
	UserID    string `json:"user_id"`
	PostID    string `json:"post_id"`
	CreatedAt int64  `json:"created_at"`
}

type LikeStatus struct {
	PostID    string `json:"post_id"`
	LikeCount int64  `json:"like_count"`
	IsLiked   bool   `json:"is_liked"`
}
