package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const resendEndpoint = "https://api.resend.com/emails"

type EmailService struct {
	apiKey    string
	from      string
	siteURL   string
	endpoint  string
	client    *http.Client
	templates *template.Template
}

type EmailData struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Html    string `json:"html"`
}

type WelcomeEmailData struct {
	Name    string
	SiteURL string
}

type PlanUpgradedData struct {
	Name              string
	PlanName          string
	Price             string
	MaxSaves          string
	MaxDownloads      string
	MaxCommentsPerDay string
	SiteURL           string
}

type PlanCancelledData struct {
	Name     string
	PlanName string
	SiteURL  string
}

type NewsletterWelcomeData struct {
	SiteURL string
}

type DailyDigestData struct {
	Date           time.Time
	NewUsers       int64
	NewSubscribers int64
	Downloads      int64
	Comments       int64
	Upgrades       int64
}

type Option func(*EmailService)

// WithEndpoint points the service at a different Resend-compatible URL.
func WithEndpoint(url string) Option {
	return func(s *EmailService) { s.endpoint = url }
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *EmailService) { s.client = c }
}

func NewEmailService(apiKey, from, siteURL string, opts ...Option) (*EmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend API key is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("error loading email templates: %w", err)
	}

	s := &EmailService{
		apiKey:    apiKey,
		from:      from,
		siteURL:   siteURL,
		endpoint:  resendEndpoint,
		client:    &http.Client{Timeout: 10 * time.Second},
		templates: templates,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *EmailService) sendTemplateEmail(to, subject, templateName string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	jsonData, err := json.Marshal(EmailData{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body.String(),
	})
	if err != nil {
		return fmt.Errorf("error marshaling email data: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("resend API error: status %d: %s", resp.StatusCode, respBody)
	}

	logrus.WithFields(logrus.Fields{
		"template": templateName,
		"status":   resp.StatusCode,
	}).Debug("Email sent")
	return nil
}

func (s *EmailService) SendWelcomeEmail(email, name string) error {
	data := WelcomeEmailData{Name: name, SiteURL: s.siteURL}
	return s.sendTemplateEmail(email, "Welcome to Examplehub! 🎉", "welcome.html", data)
}

func (s *EmailService) SendPlanUpgradedEmail(email string, data PlanUpgradedData) error {
	data.SiteURL = s.siteURL
	return s.sendTemplateEmail(email, fmt.Sprintf("You're on %s now 🚀", data.PlanName), "plan_upgraded.html", data)
}

func (s *EmailService) SendPlanCancelledEmail(email, name, planName string) error {
	data := PlanCancelledData{Name: name, PlanName: planName, SiteURL: s.siteURL}
	return s.sendTemplateEmail(email, "Your subscription has been cancelled", "plan_cancelled.html", data)
}

func (s *EmailService) SendNewsletterWelcome(email string) error {
	data := NewsletterWelcomeData{SiteURL: s.siteURL}
	return s.sendTemplateEmail(email, "Thanks for subscribing 📬", "newsletter_welcome.html", data)
}

func (s *EmailService) SendDailyDigest(email string, data DailyDigestData) error {
	subject := fmt.Sprintf("Daily digest for %s 📊", data.Date.Format("Jan 2, 2006"))
	return s.sendTemplateEmail(email, subject, "daily_digest.html", data)
}
