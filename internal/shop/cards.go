package shop

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cardCache holds rendered product cards keyed by product id. Entries are
// invalidated on every product or stock mutation.
type cardCache struct {
	*lru.Cache[int, string]
}

func newCardCache(size int) *cardCache {
	c, err := lru.New[int, string](size)
	if err != nil {
		// Only possible with a non-positive size, which config defaulting
		// prevents.
		panic(err)
	}
	return &cardCache{Cache: c}
}

func (c *cardCache) invalidate(ids ...int) {
	for _, id := range ids {
		c.Remove(id)
	}
}

// ProductCard renders the customer-facing card for a product, cached until
// the product changes.
func (s *service) ProductCard(id int) (string, bool, error) {
	if card, ok := s.cards.Get(id); ok {
		return card, true, nil
	}

	p, ok, err := s.store.Product(id)
	if err != nil || !ok {
		return "", ok, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💊 %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n", p.Description)
	}
	fmt.Fprintf(&b, "\n💰 Price: %s\n", s.FormatPrice(p.Price))
	switch {
	case p.Stock == 0:
		b.WriteString("⛔ Out of stock")
	case p.Stock <= s.threshold:
		fmt.Fprintf(&b, "⚠️ Only %d left", p.Stock)
	default:
		fmt.Fprintf(&b, "📦 In stock: %d", p.Stock)
	}

	card := b.String()
	s.cards.Add(id, card)
	return card, true, nil
}
