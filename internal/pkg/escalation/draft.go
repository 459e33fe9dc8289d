package escalation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AmeyBarve/CivicTrack/app/models"
	"github.com/AmeyBarve/CivicTrack/internal/pkg/env"
)

// Draft is a fully composed outbound escalation message. Composing a draft
// has no side effects; sending it is a separate step.
type Draft struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
}

// ErrNotEscalatable is returned when a report lacks the enrichment data an
// escalation letter is built from.
var ErrNotEscalatable = errors.New("report has no address or jurisdiction data to escalate with")

const bodyTemplate = `Dear Esteemed Representative,

I am writing to respectfully request your urgent intervention regarding a persistent civic issue at the following location:
Location: %s
GPS Coordinates: (Latitude: %g, Longitude: %g)

The specific issue is: %s. This problem continues to pose a significant safety hazard and inconvenience to the residents of this area. A photograph of the issue is attached for your reference.

This matter was previously reported to the municipal authority, but unfortunately, a satisfactory resolution has not yet been achieved.

As our elected representative, your support in ensuring the timely resolution of this issue would be invaluable. We kindly request your assistance in urging the relevant municipal departments to take immediate and effective action.

The responsible authorities for this jurisdiction are:
- MLA: %s
- MP: %s
- Municipal Body: %s

We look forward to your prompt attention to this critical community concern.

Thank you for your dedication to public service.

Sincerely,

A Concerned and Vigilant Citizen
`

// ComposeEscalation builds the intervention request for a report's
// responsible officials. It needs the enriched address and civic data;
// reports whose enrichment degraded to null cannot be escalated.
func ComposeEscalation(r *models.Report) (*Draft, error) {
	if r == nil || r.Address == nil || r.CivicData == nil || r.IssueDescription == "" {
		return nil, ErrNotEscalatable
	}

	recipients := strings.Split(env.GetEnv(
		"ESCALATION_RECIPIENTS",
		"mla.pune@placeholder.gov.in,mp.pune@placeholder.gov.in",
	), ",")
	for i := range recipients {
		recipients[i] = strings.TrimSpace(recipients[i])
	}

	subject := fmt.Sprintf("Request for Intervention: Unresolved Civic Issue - %s at %s",
		r.IssueDescription, *r.Address)

	body := fmt.Sprintf(bodyTemplate,
		*r.Address,
		r.Latitude, r.Longitude,
		r.IssueDescription,
		r.CivicData.MLA,
		r.CivicData.MP,
		r.CivicData.MunicipalCorporation,
	)

	return &Draft{
		Recipients: recipients,
		Subject:    subject,
		Body:       body,
	}, nil
}
