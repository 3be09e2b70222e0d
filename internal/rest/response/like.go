package response

import "github.com/Guyuepp/like-engine/domain"

type Toggle struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	IsLiked bool   `json:"isLiked"`
	Queued  bool   `json:"queued"`
}

func NewToggleFromDomain(res domain.ToggleResult) Toggle {
	message := "Post liked successfully"
	if !res.Liked {
		message = "Post unliked successfully"
	}
	if !res.Queued {
		message += " (count update delayed)"
	}
	return Toggle{
		Success: true,
		Message: message,
		IsLiked: res.Liked,
		Queued:  res.Queued,
	}
}

type LikeCount struct {
	PostID  int64 `json:"post_id"`
	Count   int64 `json:"count"`
	UserID  int64 `json:"user_id,omitempty"`
	IsLiked *bool `json:"isLiked,omitempty"`
}

// NewLikeCountFromDomain: Domain -> Response
func NewLikeCountFromDomain(lc domain.LikeCount, withUser bool) LikeCount {
	res := LikeCount{
		PostID: lc.PostID,
		Count:  lc.Count,
	}
	if withUser {
		isLiked := lc.IsLiked
		res.UserID = lc.UserID
		res.IsLiked = &isLiked
	}
	return res
}
