// Package notify sends the admin an email summary when a new memorial
// request comes in. Delivery is best effort: one attempt, failures are
// logged and never surfaced to the submitting caller.
package notify

import (
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"

	"memorial-platform/internal/models"
)

// EmailNotifier sends request notifications through Resend.
type EmailNotifier struct {
	client *resend.Client
	from   string
	to     string
}

func NewEmailNotifier(apiKey, from, to string) *EmailNotifier {
	return &EmailNotifier{
		client: resend.NewClient(apiKey),
		from:   from,
		to:     to,
	}
}

// RequestCreated emails the admin a summary of a newly submitted request.
func (n *EmailNotifier) RequestCreated(req *models.MemorialRequest) error {
	subject := "New Memorial Request: " + req.LovedOneName

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{n.to},
		Subject: subject,
		Html:    requestEmailBody(req),
	}

	if _, err := n.client.Emails.Send(params); err != nil {
		return fmt.Errorf("send request notification: %w", err)
	}
	return nil
}

func requestEmailBody(req *models.MemorialRequest) string {
	var b strings.Builder

	b.WriteString("<h2>New Memorial Request Submission</h2>")

	b.WriteString("<h3>Request Details</h3>")
	fmt.Fprintf(&b, "<p><strong>Request ID:</strong> %s</p>", req.ID)
	fmt.Fprintf(&b, "<p><strong>Submission Time:</strong> %s</p>", req.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"))

	b.WriteString("<h3>Submitter Information</h3>")
	fmt.Fprintf(&b, "<p><strong>Submitter Name:</strong> %s</p>", req.RequesterName)
	fmt.Fprintf(&b, "<p><strong>Submitter Email:</strong> %s</p>", req.RequesterEmail)

	b.WriteString("<h3>Memorial Information</h3>")
	fmt.Fprintf(&b, "<p><strong>Name of Deceased:</strong> %s</p>", req.LovedOneName)
	fmt.Fprintf(&b, "<p><strong>Birth Date:</strong> %s</p>", orNotProvided(req.BirthDate))
	fmt.Fprintf(&b, "<p><strong>Death Date:</strong> %s</p>", orNotProvided(req.DeathDate))
	fmt.Fprintf(&b, "<p><strong>Story:</strong> %s</p>", req.StoryNotes)
	fmt.Fprintf(&b, "<p><strong>Location:</strong> %s</p>", formatLocation(req))
	fmt.Fprintf(&b, "<p><strong>Country:</strong> %s</p>", orNotProvided(req.Country))

	b.WriteString("<h3>Selected Package</h3>")
	fmt.Fprintf(&b, "<p><strong>Tier:</strong> %s</p>", req.TierSelected)
	fmt.Fprintf(&b, "<p><strong>Discount Requested:</strong> %t</p>", req.DiscountRequested)
	if req.DiscountType != nil {
		fmt.Fprintf(&b, "<p><strong>Discount Type:</strong> %s</p>", *req.DiscountType)
	}
	fmt.Fprintf(&b, "<p><strong>Payment Amount:</strong> $%.2f</p>", float64(req.PaymentAmountCents)/100)

	b.WriteString("<h3>Media Uploads</h3><ul>")
	b.WriteString(formatMediaUploads(req.MediaUploads))
	b.WriteString("</ul>")

	return b.String()
}

func formatMediaUploads(media []string) string {
	if len(media) == 0 {
		return "<li>Not provided</li>"
	}
	items := make([]string, 0, len(media))
	for _, url := range media {
		items = append(items, fmt.Sprintf(`<li><a href="%s" target="_blank">%s</a></li>`, url, url))
	}
	return strings.Join(items, "")
}

func formatLocation(req *models.MemorialRequest) string {
	parts := []string{}
	if req.Latitude != nil && req.Longitude != nil {
		parts = append(parts, fmt.Sprintf("GPS: %v, %v", *req.Latitude, *req.Longitude))
	}
	if req.LocationInfo != nil && *req.LocationInfo != "" {
		parts = append(parts, "Cemetery: "+*req.LocationInfo)
	}
	if len(parts) == 0 {
		return "Not provided"
	}
	return strings.Join(parts, " | ")
}

func orNotProvided(s *string) string {
	if s == nil || *s == "" {
		return "Not provided"
	}
	return *s
}
