package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guyuepp/like-engine/domain"
)

type fakeLikeUsecase struct {
	toggleResult domain.ToggleResult
	toggleErr    error
	count        domain.LikeCount
	countErr     error
	isLiked      bool
}

func (f *fakeLikeUsecase) Toggle(ctx context.Context, postID, userID int64) (domain.ToggleResult, error) {
	return f.toggleResult, f.toggleErr
}

func (f *fakeLikeUsecase) GetCount(ctx context.Context, postID int64) (domain.LikeCount, error) {
	return f.count, f.countErr
}

func (f *fakeLikeUsecase) GetCountWithUserStatus(ctx context.Context, postID, userID int64) (domain.LikeCount, error) {
	return f.count, f.countErr
}

func (f *fakeLikeUsecase) GetUserStatus(ctx context.Context, postID, userID int64) (bool, error) {
	return f.isLiked, nil
}

func newTestRouter(svc domain.LikeUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewLikeHandler(svc)
	r.POST("/likes", handler.Toggle)
	r.GET("/likes/count/:postId", handler.GetCount)
	r.GET("/likes/status/:postId/:userId", handler.GetUserStatus)
	return r
}

func TestToggleOK(t *testing.T) {
	svc := &fakeLikeUsecase{toggleResult: domain.ToggleResult{Liked: true, Queued: true}}
	r := newTestRouter(svc)

	body := bytes.NewBufferString(`{"post_id": 123, "user_id": 456}`)
	req := httptest.NewRequest(http.MethodPost, "/likes", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, true, got["success"])
	assert.Equal(t, true, got["isLiked"])
	assert.Equal(t, true, got["queued"])
}

func TestToggleMissingFields(t *testing.T) {
	r := newTestRouter(&fakeLikeUsecase{})

	body := bytes.NewBufferString(`{"post_id": 123}`)
	req := httptest.NewRequest(http.MethodPost, "/likes", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestToggleConflict(t *testing.T) {
	svc := &fakeLikeUsecase{toggleErr: domain.ErrConflict}
	r := newTestRouter(svc)

	body := bytes.NewBufferString(`{"post_id": 123, "user_id": 456}`)
	req := httptest.NewRequest(http.MethodPost, "/likes", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetCount(t *testing.T) {
	svc := &fakeLikeUsecase{count: domain.LikeCount{PostID: 123, Count: 42}}
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/likes/count/123", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, float64(42), got["count"])
	assert.NotContains(t, got, "isLiked")
}

func TestGetCountWithUser(t *testing.T) {
	svc := &fakeLikeUsecase{count: domain.LikeCount{PostID: 123, Count: 42, UserID: 456, IsLiked: true}}
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/likes/count/123?userId=456", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, true, got["isLiked"])
	assert.Equal(t, float64(456), got["user_id"])
}

func TestGetCountBadPostID(t *testing.T) {
	r := newTestRouter(&fakeLikeUsecase{})

	req := httptest.NewRequest(http.MethodGet, "/likes/count/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUserStatus(t *testing.T) {
	svc := &fakeLikeUsecase{isLiked: true}
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/likes/status/123/456", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, true, got["isLiked"])
}
