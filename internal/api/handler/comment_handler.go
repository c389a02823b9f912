package handler

import (
	"errors"
	"strconv"

	"cinema-go/internal/api/dto"
	"cinema-go/internal/api/middleware"
	"cinema-go/internal/api/response"
	"cinema-go/internal/model"
	"cinema-go/internal/service"
	"cinema-go/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CommentHandler struct {
	commentService *service.CommentService
	voteService    *service.VoteService
	queryService   *service.CommentQueryService
}

func NewCommentHandler(commentService *service.CommentService, voteService *service.VoteService, queryService *service.CommentQueryService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		voteService:    voteService,
		queryService:   queryService,
	}
}

// Create 发表评论
// @Summary 发表评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CommentCreateRequest true "评论内容"
// @Success 201 {object} response.Response{data=dto.CommentInfo} "发表成功"
// @Failure 400 {object} response.ErrorResponse "内容无效"
// @Failure 404 {object} response.ErrorResponse "电影或用户不存在"
// @Failure 409 {object} response.ErrorResponse "重复内容"
// @Failure 429 {object} response.ErrorResponse "发表过于频繁"
// @Router /comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	var req dto.CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.commentService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.Created(c, "发表评论成功", info)
}

// Reply 回复评论
// @Summary 回复评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "父评论ID"
// @Param body body dto.CommentReplyRequest true "回复内容"
// @Success 201 {object} response.Response{data=dto.CommentInfo} "回复成功"
// @Failure 400 {object} response.ErrorResponse "内容无效或不能回复回复"
// @Failure 404 {object} response.ErrorResponse "父评论不存在"
// @Router /comments/{id}/replies [post]
func (h *CommentHandler) Reply(c *gin.Context) {
	parentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	var req dto.CommentReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.commentService.Reply(c.Request.Context(), userID, parentID, &req)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.Created(c, "回复评论成功", info)
}

// Update PATCH /api/v1/comments/:id
func (h *CommentHandler) Update(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	var req dto.CommentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.commentService.Update(c.Request.Context(), commentID, userID, &req)
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "更新评论成功", info)
}

// Delete DELETE /api/v1/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	if err := h.commentService.Delete(c.Request.Context(), commentID, userID); err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "删除评论成功", nil)
}

// Vote 投票，同类型重复投票视为撤销
// @Summary 评论投票
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "评论ID"
// @Param body body dto.CommentVoteRequest true "投票类型"
// @Success 200 {object} response.Response{data=dto.CommentInfo} "投票成功"
// @Failure 403 {object} response.ErrorResponse "不能给自己投票"
// @Failure 404 {object} response.ErrorResponse "评论不存在"
// @Router /comments/{id}/vote [post]
func (h *CommentHandler) Vote(c *gin.Context) {
	commentID, err := parseIDParam(c)
	if err != nil {
		response.BadRequest(c, "无效的评论ID")
		return
	}

	var req dto.CommentVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数无效: "+err.Error())
		return
	}

	userID, _ := middleware.GetCurrentUserID(c)

	info, err := h.voteService.Vote(c.Request.Context(), commentID, userID, model.VoteType(req.VoteType))
	if err != nil {
		handleCommentError(c, err)
		return
	}

	response.OK(c, "投票成功", info)
}

// ListByMovie 电影评论串
// @Summary 获取电影评论
// @Tags 评论
// @Produce json
// @Param movie_id path int true "电影ID"
// @Success 200 {object} response.Response{data=dto.CommentThreadData} "获取成功"
// @Router /comments/movie/{movie_id} [get]
func (h *CommentHandler) ListByMovie(c *gin.Context) {
	movieID, err := strconv.ParseInt(c.Param("movie_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的电影ID")
		return
	}

	response.OK(c, "获取评论列表成功", h.queryService.ListByMovie(c.Request.Context(), movieID))
}

// CountByMovie GET /api/v1/comments/movie/:movie_id/count
func (h *CommentHandler) CountByMovie(c *gin.Context) {
	movieID, err := strconv.ParseInt(c.Param("movie_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "无效的电影ID")
		return
	}

	response.OK(c, "获取评论数成功", h.queryService.CountByMovie(c.Request.Context(), movieID))
}

// ListRecent GET /api/v1/comments/recent?limit=
func (h *CommentHandler) ListRecent(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(c, "无效的limit参数")
			return
		}
		limit = n
	}

	response.OK(c, "获取最新评论成功", h.queryService.ListRecent(c.Request.Context(), limit))
}

func parseIDParam(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func handleCommentError(c *gin.Context, err error) {
	var rl *service.RateLimitedError
	switch {
	case errors.As(err, &rl):
		response.TooManyRequests(c, err.Error(), int64(rl.WaitTime.Seconds()))
	case errors.Is(err, service.ErrInvalidContent),
		errors.Is(err, service.ErrInvalidVoteType),
		errors.Is(err, service.ErrReplyToReply):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrParentNotFound),
		errors.Is(err, service.ErrReferenceNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrCommentNoPermission),
		errors.Is(err, service.ErrSelfVote):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrDuplicateContent):
		response.Conflict(c, err.Error())
	default:
		logger.Error("Comment operation failed", zap.Error(err))
		response.InternalError(c, "操作失败，请稍后重试")
	}
}
