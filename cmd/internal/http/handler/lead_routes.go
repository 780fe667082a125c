package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"leadfinder/cmd/internal/contract"
	"leadfinder/cmd/internal/utils"
	"leadfinder/cmd/internal/utils/apierror"
)

type LeadService interface {
	GetLeads(query *contract.LeadQuery) ([]*contract.LeadResponse, apierror.ErrorResponse)
	GetLead(id int64) (*contract.LeadResponse, apierror.ErrorResponse)
	PatchLead(id int64, req *contract.UpdateLeadRequest) (*contract.LeadResponse, apierror.ErrorResponse)
	RescoreLead(id int64, profile string) (*contract.LeadResponse, apierror.ErrorResponse)
	GetStats() (*contract.StatsResponse, apierror.ErrorResponse)
}

type DefaultLeadRoute struct {
	LeadService LeadService
}

func NewLeadRoute(leadService LeadService) *DefaultLeadRoute {
	return &DefaultLeadRoute{LeadService: leadService}
}

func (l *DefaultLeadRoute) GetLeads(c echo.Context) error {
	var query contract.LeadQuery
	if err := c.Bind(&query); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedQueryError)
	}

	leads, apierr := l.LeadService.GetLeads(&query)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}

	resp := echo.Map{
		"leads": leads,
		"count": len(leads),
	}
	return c.JSON(http.StatusOK, &resp)
}

func (l *DefaultLeadRoute) GetLead(c echo.Context) error {
	id, perr := utils.GetIDParam(c)
	if perr != nil {
		return c.JSON(perr.Code(), perr)
	}

	lead, apierr := l.LeadService.GetLead(id)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, lead)
}

func (l *DefaultLeadRoute) PatchLead(c echo.Context) error {
	id, perr := utils.GetIDParam(c)
	if perr != nil {
		return c.JSON(perr.Code(), perr)
	}

	var req contract.UpdateLeadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apierror.MalformedJSONError)
	}

	lead, apierr := l.LeadService.PatchLead(id, &req)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, lead)
}

func (l *DefaultLeadRoute) RescoreLead(c echo.Context) error {
	id, perr := utils.GetIDParam(c)
	if perr != nil {
		return c.JSON(perr.Code(), perr)
	}

	profile := strings.TrimSpace(c.QueryParam("profile"))
	lead, apierr := l.LeadService.RescoreLead(id, profile)
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, lead)
}

func (l *DefaultLeadRoute) GetStats(c echo.Context) error {
	stats, apierr := l.LeadService.GetStats()
	if apierr != nil {
		return c.JSON(apierr.Code(), apierr)
	}
	return c.JSON(http.StatusOK, stats)
}
