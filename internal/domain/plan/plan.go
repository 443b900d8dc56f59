package plan

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrIDRequired       = errors.New("plan: id is required")
	ErrNameRequired     = errors.New("plan: name is required")
	ErrPriceNegative    = errors.New("plan: price must not be negative")
	ErrCurrencyRequired = errors.New("plan: currency is required")
	ErrUnknownInterval  = errors.New("plan: unknown billing interval")
	ErrNotFound         = errors.New("plan: not found")
)

type ID string

type Interval string

const (
	IntervalMonth Interval = "month"
	IntervalYear  Interval = "year"
	IntervalOnce  Interval = "once"
)

func ParseInterval(raw string) (Interval, error) {
	switch Interval(strings.ToLower(strings.TrimSpace(raw))) {
	case IntervalMonth:
		return IntervalMonth, nil
	case IntervalYear:
		return IntervalYear, nil
	case IntervalOnce:
		return IntervalOnce, nil
	default:
		return "", ErrUnknownInterval
	}
}

// Plan is a purchasable membership tier shown on the sales page.
type Plan struct {
	ID         ID
	Name       string
	PriceCents int64
	Currency   string
	Interval   Interval
	Features   []string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type CreateParams struct {
	ID         ID
	Name       string
	PriceCents int64
	Currency   string
	Interval   Interval
	Features   []string
	Now        time.Time
}

func New(params CreateParams) (*Plan, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if params.PriceCents < 0 {
		return nil, ErrPriceNegative
	}
	currency := strings.ToUpper(strings.TrimSpace(params.Currency))
	if currency == "" {
		return nil, ErrCurrencyRequired
	}
	interval, err := ParseInterval(string(params.Interval))
	if err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	return &Plan{
		ID:         ID(id),
		Name:       name,
		PriceCents: params.PriceCents,
		Currency:   currency,
		Interval:   interval,
		Features:   normalizeFeatures(params.Features),
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

type UpdateParams struct {
	Name       *string
	PriceCents *int64
	Currency   *string
	Interval   *Interval
	Features   []string
	Active     *bool
}

func (p *Plan) Apply(params UpdateParams, now time.Time) error {
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return ErrNameRequired
		}
		p.Name = name
	}
	if params.PriceCents != nil {
		if *params.PriceCents < 0 {
			return ErrPriceNegative
		}
		p.PriceCents = *params.PriceCents
	}
	if params.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*params.Currency))
		if currency == "" {
			return ErrCurrencyRequired
		}
		p.Currency = currency
	}
	if params.Interval != nil {
		interval, err := ParseInterval(string(*params.Interval))
		if err != nil {
			return err
		}
		p.Interval = interval
	}
	if params.Features != nil {
		p.Features = normalizeFeatures(params.Features)
	}
	if params.Active != nil {
		p.Active = *params.Active
	}
	p.touch(now)
	return nil
}

func (p *Plan) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	p.UpdatedAt = now.UTC()
}

func normalizeFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	for _, feature := range features {
		feature = strings.TrimSpace(feature)
		if feature == "" {
			continue
		}
		out = append(out, feature)
	}
	return out
}

// SalesPage is the singleton configuration for the public landing page.
type SalesPage struct {
	Headline        string
	Subheadline     string
	HeroImageURL    string
	FeaturedPlanIDs []ID
	UpdatedAt       time.Time
}

type Repository interface {
	Save(ctx context.Context, p *Plan) error
	ByID(ctx context.Context, id ID) (*Plan, error)
	ByIDs(ctx context.Context, ids []ID) ([]*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
	Delete(ctx context.Context, id ID) error
}

type SalesPageStore interface {
	Get(ctx context.Context) (*SalesPage, error)
	Save(ctx context.Context, page *SalesPage) error
}
