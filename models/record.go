package models

// SearchHit is one row of a paged search response. The registry's search
// index returns only a subset of the record; agent fields are usually empty
// until the detail page is fetched. ID may be empty, in which case no detail
// fetch is possible.
type SearchHit struct {
	ID             string `json:"id"`
	BusinessName   string `json:"businessName"`
	RegistrationID string `json:"registrationId"`
	Status         string `json:"status"`
	FilingDate     string `json:"filingDate"`
	AgentName      string `json:"agentName"`
	AgentAddress   string `json:"agentAddress"`
	AgentEmail     string `json:"agentEmail"`
}

// BusinessDetail holds the fields extracted from a business detail page.
type BusinessDetail struct {
	BusinessName string
	Status       string
	FilingDate   string
	Address      string
	AgentName    string
	AgentAddress string
	AgentEmail   string
}

// PageResult is one page of search results plus pagination metadata.
// TotalPages is authoritative only on the page-1 response; callers must not
// re-read it from later pages.
type PageResult struct {
	Results    []SearchHit
	Total      int
	Page       int
	TotalPages int
}

// BusinessRecord is the output unit: a search hit merged with its detail
// page. Field order here is the stable order of the JSON output.
type BusinessRecord struct {
	BusinessName   string `json:"business_name"`
	RegistrationID string `json:"registration_id"`
	Status         string `json:"status"`
	FilingDate     string `json:"filing_date"`
	AgentName      string `json:"agent_name"`
	AgentAddress   string `json:"agent_address"`
	AgentEmail     string `json:"agent_email"`
}

// Merge combines a search hit with its detail page into a BusinessRecord.
// Detail fields win field-by-field when non-empty; an absent or empty detail
// field never erases a populated hit field. A nil detail maps the hit as-is.
func Merge(hit SearchHit, detail *BusinessDetail) BusinessRecord {
	rec := BusinessRecord{
		BusinessName:   hit.BusinessName,
		RegistrationID: hit.RegistrationID,
		Status:         hit.Status,
		FilingDate:     hit.FilingDate,
		AgentName:      hit.AgentName,
		AgentAddress:   hit.AgentAddress,
		AgentEmail:     hit.AgentEmail,
	}
	if detail == nil {
		return rec
	}
	if detail.BusinessName != "" {
		rec.BusinessName = detail.BusinessName
	}
	if detail.Status != "" {
		rec.Status = detail.Status
	}
	if detail.FilingDate != "" {
		rec.FilingDate = detail.FilingDate
	}
	if detail.AgentName != "" {
		rec.AgentName = detail.AgentName
	}
	if detail.AgentAddress != "" {
		rec.AgentAddress = detail.AgentAddress
	}
	if detail.AgentEmail != "" {
		rec.AgentEmail = detail.AgentEmail
	}
	return rec
}
