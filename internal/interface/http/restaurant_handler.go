package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/findmy/internal/domain/restaurant"
)

// CreateRestaurant stores a new directory entry.
func (h *Handler) CreateRestaurant(c *gin.Context) {
	var in restaurant.Input
	if !bindJSON(c, &in) {
		return
	}
	created, err := h.restaurantSvc.Create(c.Request.Context(), in)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListRestaurants returns the whole directory.
func (h *Handler) ListRestaurants(c *gin.Context) {
	items, err := h.restaurantSvc.List(c.Request.Context())
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetRestaurant returns a single entry.
func (h *Handler) GetRestaurant(c *gin.Context) {
	id, ok := restaurantID(c)
	if !ok {
		return
	}
	item, err := h.restaurantSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateRestaurant replaces every field of an entry.
func (h *Handler) UpdateRestaurant(c *gin.Context) {
	id, ok := restaurantID(c)
	if !ok {
		return
	}
	var in restaurant.Input
	if !bindJSON(c, &in) {
		return
	}
	updated, err := h.restaurantSvc.Update(c.Request.Context(), id, in)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteRestaurant removes an entry.
func (h *Handler) DeleteRestaurant(c *gin.Context) {
	id, ok := restaurantID(c)
	if !ok {
		return
	}
	resp, err := h.restaurantSvc.Delete(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, domainError(err))
		return
	}
	c.JSON(http.StatusOK, resp)
}

func restaurantID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_input", "restaurant id must be a positive integer", err))
		return 0, false
	}
	return id, true
}
