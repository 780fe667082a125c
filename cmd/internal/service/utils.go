package service

import (
	"leadfinder/cmd/internal/contract"
	"leadfinder/cmd/internal/domain/entity"
	"leadfinder/cmd/internal/utils"
)

func toLeadResponse(c *entity.Company) *contract.LeadResponse {
	return &contract.LeadResponse{
		ID:            c.ID,
		Name:          c.Name,
		Address:       c.Address,
		City:          c.City,
		State:         c.State,
		Zipcode:       c.Zipcode,
		Phone:         c.Phone,
		Email:         c.Email,
		Website:       c.Website,
		Category:      c.Category,
		BuildingSize:  c.BuildingSize,
		YearBuilt:     c.YearBuilt,
		Description:   c.Description,
		Source:        c.Source,
		LeadScore:     c.LeadScore,
		AIAnalysis:    c.AIAnalysis,
		ContactPerson: c.ContactPerson,
		ContactTitle:  c.ContactTitle,
		ContactEmail:  c.ContactEmail,
		ContactPhone:  c.ContactPhone,
		Notes:         c.Notes,
		ScrapedAt:     utils.FormatEpoch(c.ScrapedAt),
	}
}

// toPatch keeps only the fields the request actually carries.
func toPatch(req *contract.UpdateLeadRequest) map[string]any {
	patch := map[string]any{}
	set := func(column string, v *string) {
		if v != nil {
			patch[column] = *v
		}
	}

	set("contact_person", req.ContactPerson)
	set("contact_title", req.ContactTitle)
	set("contact_email", req.ContactEmail)
	set("contact_phone", req.ContactPhone)
	set("email", req.Email)
	set("phone", req.Phone)
	set("website", req.Website)
	set("building_size", req.BuildingSize)
	set("year_built", req.YearBuilt)
	set("zipcode", req.Zipcode)
	set("notes", req.Notes)
	return patch
}
