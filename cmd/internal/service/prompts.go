package service

import (
	"fmt"
	"strings"

	"leadfinder/cmd/internal/domain/entity"
	"leadfinder/cmd/internal/domain/leads"
)

const analysisPrompt = "You are an expert in energy efficiency and sustainable building solutions. " +
	"Analyze this potential lead to determine their energy efficiency needs and opportunities. " +
	"Focus on identifying their likely energy-related pain points and how an energy efficiency provider " +
	"(LED lighting, smart building technologies, energy management) could help them reduce costs and improve sustainability. " +
	"Provide a brief opportunity assessment and a lead quality score from 0-100 based on their potential " +
	"need for energy efficiency solutions, written as 'Score: N'. Higher scores mean better opportunities."

const outreachPrompt = "You are a skilled sales development representative for an energy efficiency company " +
	"offering LED lighting retrofits, smart building technologies and energy management systems. " +
	"Write a personalized, compelling outreach email to this company. " +
	"Format your response with 'Subject: [Your subject line]' on the first line, followed by the email body. " +
	"Focus on the specific benefits they would gain based on their profile. " +
	"Keep it concise (150-200 words), professional, and emphasize potential energy savings. " +
	"Do not use pushy sales language. Make it warm and conversational. " +
	"Include a clear call to action for a brief intro call."

const potentialLeadsPrompt = "You are an expert lead researcher for an energy efficiency solutions company. " +
	"Based on the provided city and criteria, generate a list of 5-10 potential client businesses " +
	"that would likely benefit from energy efficiency upgrades. For each business, provide:\n" +
	"1. Business name\n" +
	"2. Type of business/industry\n" +
	"3. Likely size (small, medium, large)\n" +
	"4. Why they would benefit from energy efficiency solutions\n" +
	"5. Who the key decision-maker would likely be (role, not specific name)\n" +
	"6. Suggested approach for contacting them\n\n" +
	"Format your response as a structured JSON array with the following fields for each lead: " +
	"name, category, size, reason, contact_title, approach"

const researchPrompt = "You are an expert lead researcher for an energy efficiency solutions company. " +
	"Research the specified company and provide detailed information that would be helpful for sales outreach. " +
	"If you don't have specific information about this company, provide your best educated guess " +
	"based on similar companies in the same industry and location.\n\n" +
	"Format your response as a structured JSON object with the following fields:\n" +
	"- name: Company name\n" +
	"- address: Likely address or area\n" +
	"- category: Business category/industry\n" +
	"- building_size: Estimated size\n" +
	"- year_built: Estimated year founded or building age\n" +
	"- description: Brief description of the company\n" +
	"- contact_person: Likely decision-maker name (if known, otherwise leave blank)\n" +
	"- contact_title: Likely decision-maker title\n" +
	"- energy_needs: Likely energy efficiency needs\n" +
	"- approach: Suggested sales approach"

const leadSourcesPrompt = "You are an expert in B2B sales and lead generation for energy efficiency solutions. " +
	"Identify specific lead sources that would be valuable for finding potential clients in the specified location. " +
	"Focus on:\n" +
	"1. Local business directories\n" +
	"2. Industry associations\n" +
	"3. Chamber of commerce\n" +
	"4. Local government resources\n" +
	"5. Specific databases\n" +
	"6. Events or conferences\n\n" +
	"Be specific to the location. Provide the name of each source and a brief explanation of why it would be valuable."

const leadSourcesContext = "City: %s\nState: %s\n" +
	"Task: Identify specific lead sources (websites, directories, organizations, etc.) " +
	"that would be good for finding potential clients for energy efficiency solutions in this location."

const marketPrompt = "You are an expert market analyst specializing in energy efficiency and sustainability. " +
	"Analyze the market potential for energy efficiency solutions in the specified location. " +
	"Include in your analysis:\n" +
	"1. Overview of the local business landscape\n" +
	"2. Building stock characteristics (age, types, size)\n" +
	"3. Local energy costs and consumption patterns\n" +
	"4. Regulatory environment and incentives\n" +
	"5. Competitive landscape\n" +
	"6. Top 3-5 industry verticals to target\n" +
	"7. Estimated market size and growth potential\n\n" +
	"Be specific to the location and provide actionable insights."

const marketContext = "City: %s\nState: %s\n" +
	"Task: Analyze the market potential for energy efficiency solutions in this location."

// orUnknown keeps prompts readable when a field was never filled in.
func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func analysisContext(c *entity.Company) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", orUnknown(c.Name))
	fmt.Fprintf(&b, "Category/Industry: %s\n", orUnknown(c.Category))
	fmt.Fprintf(&b, "Address: %s, %s, %s\n", orUnknown(c.Address), c.City, c.State)
	fmt.Fprintf(&b, "Building Size: %s\n", orUnknown(c.BuildingSize))
	fmt.Fprintf(&b, "Year Built/Established: %s\n", orUnknown(c.YearBuilt))
	fmt.Fprintf(&b, "Description: %s\n", orUnknown(c.Description))
	fmt.Fprintf(&b, "Contact: %s, %s\n", c.ContactPerson, c.ContactTitle)
	fmt.Fprintf(&b, "Website: %s\n", c.Website)
	return b.String()
}

func outreachContext(c *entity.Company) string {
	contact := c.ContactPerson
	if contact == "" {
		contact = "Building Owner/Manager"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\n", orUnknown(c.Name))
	fmt.Fprintf(&b, "Category/Industry: %s\n", orUnknown(c.Category))
	fmt.Fprintf(&b, "Contact Person: %s, %s\n", contact, c.ContactTitle)
	fmt.Fprintf(&b, "Building Size: %s\n", orUnknown(c.BuildingSize))
	fmt.Fprintf(&b, "Year Built/Established: %s\n", orUnknown(c.YearBuilt))
	fmt.Fprintf(&b, "City, State: %s, %s\n", c.City, c.State)
	fmt.Fprintf(&b, "Lead Score: %d/100\n", c.LeadScore)

	if c.AIAnalysis != "" {
		fmt.Fprintf(&b, "\nAI Analysis: %s\n", c.AIAnalysis)
	}
	return b.String()
}

func potentialLeadsContext(loc leads.Location, industry string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "City: %s\nState: %s\n", loc.City, loc.State)
	if industry != "" {
		fmt.Fprintf(&b, "Industry focus: %s\n", industry)
	}
	b.WriteString("Company type: Looking for businesses that would benefit from energy efficiency solutions, " +
		"particularly those with older or larger buildings, or businesses with high energy consumption like: " +
		"offices, retail, hospitals, schools, manufacturing, data centers, etc.")
	return b.String()
}

func researchContext(name string, loc leads.Location) string {
	return fmt.Sprintf("Company Name: %s\nCity: %s\nState: %s\n"+
		"Research Task: Generate detailed lead information about this company for an energy efficiency solutions provider.",
		name, loc.City, loc.State)
}
