// Package catalog holds the read-only menu tree the cart engine resolves
// modifier snapshots from. The tree is loaded once at startup; the engine
// never mutates it.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/tavolo-pos/api/internal/cart"
)

// Menu is the root of the catalog tree.
type Menu struct {
	Categories []Category `json:"categories"`
}

// Category groups related products.
type Category struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}

// Product is a sellable menu entry with optional variants and modifier
// groups.
type Product struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Price               decimal.Decimal      `json:"price"`
	Variants            []Variant            `json:"variants,omitempty"`
	ModifierGroups      []ModifierGroup      `json:"modifier_groups,omitempty"`
	PizzaCustomizations []PizzaCustomization `json:"pizza_customizations,omitempty"`
}

// Variant is a size or preparation option carrying its own price.
type Variant struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ModifierGroup bundles selectable add-ons.
type ModifierGroup struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Modifiers []Modifier `json:"modifiers"`
}

// Modifier is one selectable add-on.
type Modifier struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// PizzaCustomization is an available ingredient customization.
type PizzaCustomization struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Load reads the menu tree from a JSON file.
func Load(path string) (*Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}
	var m Menu
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse menu file: %w", err)
	}
	return &m, nil
}

// FindProduct returns the product with the given id.
func (m *Menu) FindProduct(id string) (Product, bool) {
	for _, c := range m.Categories {
		for _, p := range c.Products {
			if p.ID == id {
				return p, true
			}
		}
	}
	return Product{}, false
}

// FindVariant returns the named variant of a product.
func (p Product) FindVariant(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// ResolveModifier looks up a modifier snapshot by id across the whole tree.
// An unknown id degrades to a stub with a generic name and zero price so the
// cart stays renderable under partial menu data; lookups never fail.
// Satisfies cart.ModifierResolver.
func (m *Menu) ResolveModifier(id string) cart.ItemModifier {
	for _, c := range m.Categories {
		for _, p := range c.Products {
			for _, g := range p.ModifierGroups {
				for _, mod := range g.Modifiers {
					if mod.ID == id {
						return cart.ItemModifier{
							ID:              mod.ID,
							ModifierGroupID: g.ID,
							Name:            mod.Name,
							Price:           mod.Price,
						}
					}
				}
			}
		}
	}
	return cart.ItemModifier{
		ID:    id,
		Name:  "Unknown modifier",
		Price: decimal.Zero,
	}
}
