package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	hookupdomain "github.com/smallbiznis/hookup/internal/hookup/domain"
)

type createHookupRequest struct {
	Name     *string `json:"name"`
	Type     *string `json:"type"`
	Endpoint *string `json:"endpoint"`
}

type updateHookupRequest struct {
	Name     *string `json:"name,omitempty"`
	Endpoint *string `json:"endpoint,omitempty"`
}

type listHookupsResponse struct {
	SmartFurnitureHookups []hookupdomain.Response `json:"smartFurnitureHookups"`
}

func (s *Server) CreateHookup(c *gin.Context) {
	var req createHookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var vErr ValidationErrors
	name := requireField(&vErr, "name", req.Name)
	typ := requireField(&vErr, "type", req.Type)
	endpoint := requireField(&vErr, "endpoint", req.Endpoint)
	if !vErr.empty() {
		AbortWithError(c, &vErr)
		return
	}

	h, err := s.hookupSvc.Create(c.Request.Context(), hookupdomain.CreateRequest{
		Name:     name,
		Type:     typ,
		Endpoint: endpoint,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, hookupdomain.NewResponse(h))
}

func (s *Server) ListHookups(c *gin.Context) {
	items, err := s.hookupSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, listHookupsResponse{
		SmartFurnitureHookups: hookupdomain.NewResponses(items),
	})
}

func (s *Server) GetHookupByID(c *gin.Context) {
	h, err := s.hookupSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if h == nil {
		AbortWithError(c, hookupdomain.ErrNotFound)
		return
	}

	c.JSON(http.StatusOK, hookupdomain.NewResponse(h))
}

func (s *Server) UpdateHookup(c *gin.Context) {
	var req updateHookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if req.Name == nil && req.Endpoint == nil {
		AbortWithError(c, newValidationError("request", "empty_update", "name or endpoint is required"))
		return
	}

	var vErr ValidationErrors
	name := optionalField(&vErr, "name", req.Name)
	endpoint := optionalField(&vErr, "endpoint", req.Endpoint)
	if !vErr.empty() {
		AbortWithError(c, &vErr)
		return
	}

	h, err := s.hookupSvc.Update(c.Request.Context(), hookupdomain.UpdateRequest{
		ID:       c.Param("id"),
		Name:     name,
		Endpoint: endpoint,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, hookupdomain.NewResponse(h))
}

func (s *Server) DeleteHookup(c *gin.Context) {
	if err := s.hookupSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// requireField records a validation error when value is missing or blank.
// The value is returned exactly as sent.
func requireField(vErr *ValidationErrors, field string, value *string) string {
	if value == nil {
		vErr.add(field, "required", field+" is required")
		return ""
	}
	if strings.TrimSpace(*value) == "" {
		vErr.add(field, "blank", field+" must not be blank")
	}
	return *value
}

func optionalField(vErr *ValidationErrors, field string, value *string) *string {
	if value == nil {
		return nil
	}
	raw := requireField(vErr, field, value)
	return &raw
}
