package request

type Like struct {
	PostID int64 `json:"post_id" binding:"required,gt=0"`
	UserID int64 `json:"user_id" binding:"required,gt=0"`
}
