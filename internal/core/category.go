package core

import (
	"time"

	"github.com/google/uuid"
)

// DefaultIconName is the icon offered to new categories.
const DefaultIconName = "tag.fill"

// Category classifies transactions within one wallet.
type Category struct {
	id         uuid.UUID
	walletID   uuid.UUID
	name       string
	iconName   string
	color      CategoryColor
	isShared   bool
	sortOrder  int
	modifiedAt time.Time
}

// CategoryParams are the inputs to NewCategory. Zero ID generates a fresh one
// and a zero ModifiedAt is taken from Clock.
type CategoryParams struct {
	ID         uuid.UUID
	WalletID   uuid.UUID
	Name       string
	IconName   string
	Color      CategoryColor
	IsShared   bool
	SortOrder  int
	ModifiedAt time.Time
	Clock      Clock
}

func NewCategory(p CategoryParams) (Category, error) {
	if p.Name == "" {
		return Category{}, violation("Category", "name", "cannot be empty")
	}
	if p.IconName == "" {
		return Category{}, violation("Category", "iconName", "cannot be empty")
	}
	if !p.Color.IsValid() {
		return Category{}, violation("Category", "color", "unknown color "+string(p.Color))
	}

	c := Category{
		id:         p.ID,
		walletID:   p.WalletID,
		name:       p.Name,
		iconName:   p.IconName,
		color:      p.Color,
		isShared:   p.IsShared,
		sortOrder:  p.SortOrder,
		modifiedAt: p.ModifiedAt,
	}
	if c.id == uuid.Nil {
		c.id = uuid.New()
	}
	if c.modifiedAt.IsZero() {
		c.modifiedAt = clockOrSystem(p.Clock).Now()
	}
	return c, nil
}

func (c Category) ID() uuid.UUID         { return c.id }
func (c Category) WalletID() uuid.UUID   { return c.walletID }
func (c Category) Name() string          { return c.name }
func (c Category) IconName() string      { return c.iconName }
func (c Category) Color() CategoryColor  { return c.color }
func (c Category) IsShared() bool        { return c.isShared }
func (c Category) SortOrder() int        { return c.sortOrder }
func (c Category) ModifiedAt() time.Time { return c.modifiedAt }

func (c Category) params() CategoryParams {
	return CategoryParams{
		ID:         c.id,
		WalletID:   c.walletID,
		Name:       c.name,
		IconName:   c.iconName,
		Color:      c.color,
		IsShared:   c.isShared,
		SortOrder:  c.sortOrder,
		ModifiedAt: c.modifiedAt,
	}
}

func (c Category) Rename(name string, at time.Time) (Category, error) {
	p := c.params()
	p.Name, p.ModifiedAt = name, at
	return NewCategory(p)
}

// WithAppearance changes the icon and color together.
func (c Category) WithAppearance(iconName string, color CategoryColor, at time.Time) (Category, error) {
	p := c.params()
	p.IconName, p.Color, p.ModifiedAt = iconName, color, at
	return NewCategory(p)
}

func (c Category) WithSortOrder(order int, at time.Time) Category {
	c.sortOrder, c.modifiedAt = order, at
	return c
}

func (c Category) WithShared(shared bool, at time.Time) Category {
	c.isShared, c.modifiedAt = shared, at
	return c
}

func (c Category) Equal(o Category) bool {
	return c.id == o.id &&
		c.walletID == o.walletID &&
		c.name == o.name &&
		c.iconName == o.iconName &&
		c.color == o.color &&
		c.isShared == o.isShared &&
		c.sortOrder == o.sortOrder &&
		c.modifiedAt.Equal(o.modifiedAt)
}
