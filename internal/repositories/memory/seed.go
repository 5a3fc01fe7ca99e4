package memory

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"

	domain "github.com/sellerdesk/api/internal/domain"
)

//go:embed seed/*.yaml
var seedFS embed.FS

// Seed carries the deterministic dashboard fixtures shipped with the binary.
type Seed struct {
	Orders         []domain.Order
	Customers      []domain.Customer
	Messages       []domain.CustomerMessage
	Reviews        []domain.ProductReview
	Disputes       []domain.Dispute
	Campaigns      []domain.Campaign
	Discounts      []domain.Discount
	Promotions     []domain.Promotion
	Advertisements []domain.Advertisement
}

type ordersFile struct {
	Orders []domain.Order `yaml:"orders"`
}

type customersFile struct {
	Customers []domain.Customer `yaml:"customers"`
}

type messagesFile struct {
	Messages []domain.CustomerMessage `yaml:"messages"`
}

type reviewsFile struct {
	Reviews []domain.ProductReview `yaml:"reviews"`
}

type disputesFile struct {
	Disputes []domain.Dispute `yaml:"disputes"`
}

type marketingFile struct {
	Campaigns      []domain.Campaign      `yaml:"campaigns"`
	Discounts      []domain.Discount      `yaml:"discounts"`
	Promotions     []domain.Promotion     `yaml:"promotions"`
	Advertisements []domain.Advertisement `yaml:"advertisements"`
}

// LoadSeed parses the embedded fixture files. The result is stable across
// invocations so tests can assert against exact records.
func LoadSeed() (Seed, error) {
	var seed Seed

	var orders ordersFile
	if err := decodeSeedFile("seed/orders.yaml", &orders); err != nil {
		return Seed{}, err
	}
	seed.Orders = orders.Orders

	var customers customersFile
	if err := decodeSeedFile("seed/customers.yaml", &customers); err != nil {
		return Seed{}, err
	}
	seed.Customers = customers.Customers

	var messages messagesFile
	if err := decodeSeedFile("seed/messages.yaml", &messages); err != nil {
		return Seed{}, err
	}
	seed.Messages = messages.Messages

	var reviews reviewsFile
	if err := decodeSeedFile("seed/reviews.yaml", &reviews); err != nil {
		return Seed{}, err
	}
	seed.Reviews = reviews.Reviews

	var disputes disputesFile
	if err := decodeSeedFile("seed/disputes.yaml", &disputes); err != nil {
		return Seed{}, err
	}
	seed.Disputes = disputes.Disputes

	var marketing marketingFile
	if err := decodeSeedFile("seed/marketing.yaml", &marketing); err != nil {
		return Seed{}, err
	}
	seed.Campaigns = marketing.Campaigns
	seed.Discounts = marketing.Discounts
	seed.Promotions = marketing.Promotions
	seed.Advertisements = marketing.Advertisements

	return seed, nil
}

func decodeSeedFile(name string, target any) error {
	raw, err := seedFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("memory: read seed %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("memory: parse seed %s: %w", name, err)
	}
	return nil
}
