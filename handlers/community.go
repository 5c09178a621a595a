package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lumina-health-api/community"
	"lumina-health-api/models"
	"lumina-health-api/repository"
)

type communityHandler struct {
	svc *community.Service
	log *zap.Logger
}

func (h *communityHandler) create(c *gin.Context) {
	var req models.CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		renderValidation(c, bodyErrors(err))
		return
	}
	id, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		h.storageFailure(c, "create post", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "created"})
}

func (h *communityHandler) list(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	posts, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		h.storageFailure(c, "list posts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *communityHandler) search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		renderValidation(c, []FieldError{{Loc: []string{"query", "q"}, Msg: "Field required", Type: "missing"}})
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	posts, err := h.svc.Search(c.Request.Context(), q, limit)
	switch {
	case errors.Is(err, community.ErrSearchDisabled):
		renderDetail(c, http.StatusServiceUnavailable, err)
		return
	case err != nil:
		h.log.Error("search posts", zap.String("q", q), zap.Error(err))
		renderDetail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *communityHandler) storageFailure(c *gin.Context, op string, err error) {
	var se *repository.StorageError
	if errors.As(err, &se) {
		h.log.Error(op, zap.String("collection", se.Collection), zap.Error(err))
	} else {
		h.log.Error(op, zap.Error(err))
	}
	renderDetail(c, http.StatusInternalServerError, err)
}

// queryLimit parses the optional limit parameter. It renders a 422 and
// returns false when the value is not a non-negative integer. Values past the
// int range are clamped to math.MaxInt.
func queryLimit(c *gin.Context) (int, bool) {
	raw, ok := c.GetQuery("limit")
	if !ok {
		return community.DefaultLimit, true
	}
	limit, err := strconv.Atoi(raw)
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		if strings.HasPrefix(raw, "-") {
			limit, err = -1, nil
		} else {
			limit, err = math.MaxInt, nil
		}
	}
	if err != nil {
		renderValidation(c, []FieldError{{
			Loc:  []string{"query", "limit"},
			Msg:  "Input should be a valid integer, unable to parse string as an integer",
			Type: "int_parsing",
		}})
		return 0, false
	}
	if limit < 0 {
		renderValidation(c, []FieldError{{
			Loc:  []string{"query", "limit"},
			Msg:  "Input should be greater than or equal to 0",
			Type: "greater_than_equal",
		}})
		return 0, false
	}
	return limit, true
}
