// Package poller periodically scans the roster and emails a follow-up
// digest: members still inside the registration window who are missing an
// education milestone.
package poller

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"
	"time"

	"newfriends/dblayer"
	"newfriends/dbtypes"
	"newfriends/roster"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// MemberLister is the slice of the record store the poller consumes.
type MemberLister interface {
	LoadAll(ctx context.Context, sortBy dblayer.SortBy) ([]*dbtypes.Member, error)
}

type Poller struct {
	store          MemberLister
	sendgridClient *sendgrid.Client
	recheckPeriod  time.Duration
	windowMonths   int
	notifyEmails   []string
}

func New(store MemberLister, sendgridClient *sendgrid.Client, recheckPeriod time.Duration, windowMonths int, notifyEmails []string) *Poller {
	return &Poller{
		store:          store,
		sendgridClient: sendgridClient,
		recheckPeriod:  recheckPeriod,
		windowMonths:   windowMonths,
		notifyEmails:   notifyEmails,
	}
}

func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.recheckPeriod)
	defer ticker.Stop()

	// Poll once right away --- ticker doesn't fire until the tick period has
	// elapsed.
	if err := p.pollMembers(ctx); err != nil {
		slog.ErrorContext(ctx, "Error during poller pass", slog.Any("err", err))
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := p.pollMembers(ctx); err != nil {
			slog.ErrorContext(ctx, "Error during poller pass", slog.Any("err", err))
		}
	}
}

func (p *Poller) pollMembers(ctx context.Context) error {
	slog.InfoContext(ctx, "Starting poller pass")
	defer func() {
		slog.InfoContext(ctx, "Finished poller pass")
	}()

	members, err := p.store.LoadAll(ctx, dblayer.SortByDate)
	if err != nil {
		return fmt.Errorf("while loading members: %w", err)
	}

	followUps := FollowUpsNeeded(members, p.windowMonths, time.Now())
	if len(followUps) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Sending follow-up digest", slog.Int("members", len(followUps)))
	if err := p.sendDigest(ctx, followUps); err != nil {
		return fmt.Errorf("while sending follow-up digest: %w", err)
	}

	return nil
}

// FollowUp is one digest line.
type FollowUp struct {
	Name             string
	RegistrationDate string
	MissingSteps     []string
}

// FollowUpsNeeded selects members registered within the last windowMonths
// whole calendar months who haven't completed and are missing at least one
// education milestone.
func FollowUpsNeeded(members []*dbtypes.Member, windowMonths int, now time.Time) []FollowUp {
	var followUps []FollowUp
	for _, m := range members {
		if m.Completion != "" {
			continue
		}

		months, ok := roster.MonthsSince(m.RegistrationDate, now)
		if !ok || months > windowMonths {
			continue
		}

		var missing []string
		if m.Education1 == "" {
			missing = append(missing, "교육 1차")
		}
		if m.Education2 == "" {
			missing = append(missing, "교육 2차")
		}
		if m.Education3 == "" {
			missing = append(missing, "교육 3차")
		}
		if len(missing) == 0 {
			continue
		}

		followUps = append(followUps, FollowUp{
			Name:             m.Name,
			RegistrationDate: m.RegistrationDate,
			MissingSteps:     missing,
		})
	}
	return followUps
}

const digestPlain = `
다음 새친구들의 교육이 아직 남아 있습니다:
{{range . -}}
* {{.Name}} (등록일 {{.RegistrationDate}}): {{range .MissingSteps}}{{.}} {{end}}
{{end}}
`

var digestPlainTemplate = template.Must(template.New("digest").Parse(digestPlain))

func (p *Poller) sendDigest(ctx context.Context, followUps []FollowUp) error {
	message := mail.NewV3Mail()
	message.From = mail.NewEmail("새친구 알리미", "bot@newfriends.invalid")
	message.Subject = "새친구 교육 현황"

	personalization := mail.NewPersonalization()
	for _, email := range p.notifyEmails {
		personalization.To = append(personalization.To, mail.NewEmail("", email))
	}
	message.Personalizations = append(message.Personalizations, personalization)

	textContent := &bytes.Buffer{}
	if err := digestPlainTemplate.Execute(textContent, followUps); err != nil {
		return fmt.Errorf("while templating plain-text digest content: %w", err)
	}

	message.Content = append(message.Content, mail.NewContent("text/plain", textContent.String()))

	resp, err := p.sendgridClient.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("while sending mail through SendGrid: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("non-2XX response while sending mail through Sendgrid: %d %s", resp.StatusCode, resp.Body)
	}

	return nil
}
