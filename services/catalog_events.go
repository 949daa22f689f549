package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"menu-service/models"
)

const EventCatalogReplaced = "menu.catalog_replaced"

// Publisher is the slice of the broker client the catalog events need.
type Publisher interface {
	Publish(ctx context.Context, exchange, key string, body []byte) error
}

// CatalogEvent is the message body sent after each replace.
type CatalogEvent struct {
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	ItemCount  int            `json:"item_count"`
	Items      models.Catalog `json:"items"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// CatalogPublisher announces replaced catalogs on a broker exchange.
type CatalogPublisher struct {
	pub      Publisher
	exchange string
	log      zerolog.Logger
	now      func() time.Time
}

func NewCatalogPublisher(pub Publisher, exchange string, log zerolog.Logger) *CatalogPublisher {
	return &CatalogPublisher{pub: pub, exchange: exchange, log: log, now: time.Now}
}

func (p *CatalogPublisher) CatalogReplaced(ctx context.Context, items models.Catalog) {
	ev := CatalogEvent{
		EventID:    uuid.NewString(),
		Type:       EventCatalogReplaced,
		ItemCount:  len(items),
		Items:      items,
		OccurredAt: p.now().UTC(),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Error().Err(err).Msg("encode catalog event")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.pub.Publish(ctx, p.exchange, EventCatalogReplaced, body); err != nil {
		p.log.Error().Err(err).Str("event_id", ev.EventID).Msg("publish catalog event")
		return
	}
	p.log.Info().Str("event_id", ev.EventID).Int("items", ev.ItemCount).Msg("catalog event published")
}
