package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	organizationdomain "github.com/oneeighty/connect/internal/organization/domain"
	"github.com/oneeighty/connect/pkg/db/pagination"
)

type listOrganizationsQuery struct {
	Source string `form:"source"`
	pagination.Pagination
}

func (s *Server) ListOrganizations(c *gin.Context) {
	var query listOrganizationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.organizationSvc.List(c.Request.Context(), organizationdomain.ListRequest{
		SourceName: query.Source,
		Page:       query.Pagination,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetOrganization(c *gin.Context) {
	org, err := s.organizationSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

// DraftOutreach returns generated outreach copy for one organization.
// Nothing is sent; the draft is for an operator to review.
func (s *Server) DraftOutreach(c *gin.Context) {
	org, err := s.organizationSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	draft, err := s.drafts.Draft(c.Request.Context(), *org)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"organization_id": org.ID.String(),
		"draft":           draft,
	})
}
