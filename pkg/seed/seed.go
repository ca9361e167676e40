package seed

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"examplehub_backend/internal/model"
)

type exampleSeed struct {
	Slug           string
	Title          string
	Description    string
	Color          string
	MonthlyRevenue int64
	Categories     []string
}

var categories = []model.Category{
	{Name: "Email Marketing", Slug: "email-marketing"},
	{Name: "Social Media", Slug: "social-media"},
	{Name: "Content Marketing", Slug: "content-marketing"},
	{Name: "SEO", Slug: "seo"},
	{Name: "Landing Pages", Slug: "landing-pages"},
	{Name: "E-commerce", Slug: "e-commerce"},
	{Name: "SaaS", Slug: "saas"},
	{Name: "B2B", Slug: "b2b"},
}

var examples = []exampleSeed{
	{"airbnb-email-campaign", "Airbnb's Personalized Travel Recommendations",
		"Airbnb sends personalized email campaigns based on user search history and preferences, featuring destinations tailored to each user.",
		"6366f1", 120000, []string{"email-marketing", "e-commerce"}},
	{"spotify-wrapped-social-campaign", "Spotify Wrapped Annual Campaign",
		"Spotify's annual Wrapped campaign creates massive social media buzz with personalized music statistics that users love to share.",
		"1db954", 850000, []string{"social-media", "content-marketing"}},
	{"notion-landing-page-design", "Notion's Product-Led Landing Pages",
		"Notion uses clean, feature-focused landing pages that clearly communicate value propositions and drive conversions.",
		"000000", 250000, []string{"landing-pages", "saas"}},
	{"shopify-seo-content-strategy", "Shopify's SEO Content Hub",
		"Shopify creates comprehensive, SEO-optimized content that ranks for high-intent keywords while providing genuine value.",
		"96bf48", 450000, []string{"seo", "content-marketing", "e-commerce"}},
	{"stripe-documentation-as-marketing", "Stripe's Developer-Focused Content",
		"Stripe uses exceptional documentation and tutorials as a core marketing strategy, building trust with developers.",
		"635bff", 320000, []string{"content-marketing", "b2b", "saas"}},
	{"duolingo-gamification-engagement", "Duolingo's Gamification Strategy",
		"Duolingo uses game mechanics, streaks, and social features to drive daily engagement and retention.",
		"58cc02", 180000, []string{"content-marketing", "social-media"}},
	{"dropbox-referral-program", "Dropbox's Viral Referral Program",
		"Dropbox's referral program offered storage space for both referrer and referee, driving massive growth.",
		"0061ff", 280000, []string{"social-media", "saas"}},
	{"hubspot-inbound-marketing", "HubSpot's Inbound Methodology",
		"HubSpot pioneered inbound marketing with free tools, educational content, and a comprehensive marketing platform.",
		"ff7a59", 520000, []string{"content-marketing", "b2b", "seo"}},
	{"warby-parker-try-at-home", "Warby Parker's Home Try-On Program",
		"Warby Parker revolutionized eyewear retail with a free home try-on program that removes purchase friction.",
		"41b6e6", 150000, []string{"e-commerce", "landing-pages"}},
	{"slack-freemium-model", "Slack's Freemium Growth Strategy",
		"Slack used a freemium model with team collaboration features to drive viral growth in workplaces.",
		"4a154b", 420000, []string{"saas", "b2b"}},
	{"canva-design-templates", "Canva's Template Library Strategy",
		"Canva provides thousands of free and premium templates, making design accessible while driving subscriptions.",
		"00c4cc", 380000, []string{"content-marketing", "saas"}},
	{"glossier-social-community", "Glossier's Community-Driven Marketing",
		"Glossier built a beauty brand through Instagram and community engagement, creating authentic connections with customers.",
		"fd669f", 95000, []string{"social-media", "e-commerce"}},
}

func (e exampleSeed) model() model.Example {
	return model.Example{
		Slug:           e.Slug,
		Title:          e.Title,
		Description:    e.Description,
		Body:           fmt.Sprintf("# %s\n\n%s\n", e.Title, e.Description),
		ImageURL:       fmt.Sprintf("https://via.placeholder.com/800x450/%s/ffffff?text=%s", e.Color, e.Slug),
		MonthlyRevenue: e.MonthlyRevenue,
	}
}

// Seed inserts the demo categories and examples. Existing rows (matched by
// slug) are left untouched, so it is safe to run on every start.
func Seed(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, c := range categories {
			c := c
			if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "slug"}}, DoNothing: true}).
				Create(&c).Error; err != nil {
				return fmt.Errorf("seed category %s: %w", c.Slug, err)
			}
		}

		for _, e := range examples {
			var ex model.Example
			if err := tx.Where(model.Example{Slug: e.Slug}).Attrs(e.model()).FirstOrCreate(&ex).Error; err != nil {
				return fmt.Errorf("seed example %s: %w", e.Slug, err)
			}

			var cats []model.Category
			if err := tx.Where("slug IN ?", e.Categories).Find(&cats).Error; err != nil {
				return fmt.Errorf("load categories for %s: %w", e.Slug, err)
			}
			if err := tx.Model(&ex).Association("Categories").Append(cats); err != nil {
				return fmt.Errorf("link categories for %s: %w", e.Slug, err)
			}
		}

		logrus.WithFields(logrus.Fields{
			"categories": len(categories),
			"examples":   len(examples),
		}).Info("Seed completed")
		return nil
	})
}
