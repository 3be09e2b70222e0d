package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/Guyuepp/like-engine/domain"
	"github.com/Guyuepp/like-engine/internal/rest/request"
	"github.com/Guyuepp/like-engine/internal/rest/response"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// LikeHandler  represent the httphandler for likes
type LikeHandler struct {
	Service domain.LikeUsecase
}

func NewLikeHandler(svc domain.LikeUsecase) *LikeHandler {
	return &LikeHandler{
		Service: svc,
	}
}

// Toggle flips the like state for the given post and user
func (h *LikeHandler) Toggle(c *gin.Context) {
	var req request.Like
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, ResponseError{Message: domain.ErrBadParamInput.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	res, err := h.Service.Toggle(ctx, req.PostID, req.UserID)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, response.NewToggleFromDomain(res))
}

// GetCount returns the like count of a post, with the caller's like
// state when userId is given
func (h *LikeHandler) GetCount(c *gin.Context) {
	idP, err := strconv.Atoi(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}
	postID := int64(idP)
	ctx := c.Request.Context()

	userIDStr := c.Query("userId")
	if userIDStr != "" {
		userID, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ResponseError{Message: domain.ErrBadParamInput.Error()})
			return
		}

		res, err := h.Service.GetCountWithUserStatus(ctx, postID, userID)
		if err != nil {
			c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
			return
		}
		c.JSON(http.StatusOK, response.NewLikeCountFromDomain(res, true))
		return
	}

	res, err := h.Service.GetCount(ctx, postID)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, response.NewLikeCountFromDomain(res, false))
}

// GetUserStatus reports whether the user has liked the post
func (h *LikeHandler) GetUserStatus(c *gin.Context) {
	idP, err := strconv.Atoi(c.Param("postId"))
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}
	uidP, err := strconv.Atoi(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	isLiked, err := h.Service.GetUserStatus(c.Request.Context(), int64(idP), int64(uidP))
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"isLiked": isLiked,
		"post_id": int64(idP),
		"user_id": int64(uidP),
	})
}

// getStatusCode will get the code of the error from domain.LikeUsecase
func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	logrus.Error(err)
	switch err {
	case domain.ErrInternalServerError:
		return http.StatusInternalServerError
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrConflict:
		return http.StatusConflict
	case domain.ErrBadParamInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
