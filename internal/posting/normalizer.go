// internal/posting/normalizer.go

// Package posting builds stored job records from submissions and projects
// their public summary view.
package posting

import (
	"strings"
	"time"

	commonerrors "tradeboard/internal/common/errors"
	"tradeboard/internal/models"
	"tradeboard/internal/rank"
)

// Normalizer builds a JobPosting from a submission. Every submission field is
// copied into the fixed schema; absent fields keep their zero value:
//
//	firstName, lastName, email, phoneNumber, address, postalCode, city,
//	provinceState, country, title, description, currency -> ""
//	skills -> []
//
// Server overrides the caller can never supply: timestamp (write instant),
// cityLower (lowercase of city), numLeadsTotal (initial quota),
// numLeadsPurchased (0).
type Normalizer struct {
	leadQuota int
	now       func() time.Time
}

func NewNormalizer(leadQuota int) *Normalizer {
	return &Normalizer{leadQuota: leadQuota, now: time.Now}
}

// Normalize converts a submission into the persisted record. The duration and
// budget labels are encoded to their ranks; unknown labels are a contract
// violation (schema validation only admits enumerated values).
func (n *Normalizer) Normalize(sub models.JobSubmission) (models.JobPosting, error) {
	durationRank, err := rank.Durations.RankOf(sub.Duration)
	if err != nil {
		return models.JobPosting{}, commonerrors.NewUnknownLabelError(sub.Duration)
	}

	budgetRank, err := rank.Budgets.RankOf(sub.Budget)
	if err != nil {
		return models.JobPosting{}, commonerrors.NewUnknownLabelError(sub.Budget)
	}

	skills := sub.Skills
	if skills == nil {
		skills = []string{}
	}

	return models.JobPosting{
		FirstName:         sub.FirstName,
		LastName:          sub.LastName,
		Email:             sub.Email,
		PhoneNumber:       sub.PhoneNumber,
		Address:           sub.Address,
		PostalCode:        sub.PostalCode,
		City:              sub.City,
		CityLower:         strings.ToLower(sub.City),
		ProvinceState:     sub.ProvinceState,
		Country:           sub.Country,
		Title:             sub.Title,
		Description:       sub.Description,
		Skills:            skills,
		DurationRank:      durationRank,
		BudgetRank:        budgetRank,
		Currency:          sub.Currency,
		Timestamp:         n.now().UTC(),
		NumLeadsTotal:     n.leadQuota,
		NumLeadsPurchased: 0,
	}, nil
}

// ToSummary projects the public listing view, stripping the contact fields
// (email, phone, address, postal code, last name). Listing queries never
// return any other form.
func ToSummary(p models.JobPosting) models.JobSummary {
	return models.JobSummary{
		ID:                p.ID,
		FirstName:         p.FirstName,
		City:              p.City,
		ProvinceState:     p.ProvinceState,
		Country:           p.Country,
		Title:             p.Title,
		Description:       p.Description,
		Skills:            p.Skills,
		DurationRank:      p.DurationRank,
		BudgetRank:        p.BudgetRank,
		Currency:          p.Currency,
		Timestamp:         p.Timestamp,
		NumLeadsTotal:     p.NumLeadsTotal,
		NumLeadsPurchased: p.NumLeadsPurchased,
	}
}
