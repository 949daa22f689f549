package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"menu-service/models"
)

// adderState is one admin's progress through /add.
type adderState struct {
	Step     string // "name", "price", "type", "category"
	Name     string
	Price    float64
	Type     string
	Category string
}

type adderFlows struct {
	mu    sync.Mutex
	state map[int64]*adderState
}

func newAdderFlows() *adderFlows {
	return &adderFlows{state: make(map[int64]*adderState)}
}

func (f *adderFlows) get(userID int64) *adderState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state[userID]
}

func (f *adderFlows) set(userID int64, st *adderState) {
	f.mu.Lock()
	f.state[userID] = st
	f.mu.Unlock()
}

// clear drops the user's flow and reports whether there was one.
func (f *adderFlows) clear(userID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.state[userID]
	delete(f.state, userID)
	return ok
}

func newItemID() string {
	return "item_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func (b *Bot) requireAdmin(userID int64) string {
	if b.admins.isAdmin(userID) {
		return ""
	}
	return "🔒 Send /login <password> first."
}

// editCatalog loads the whole catalog, applies change and stores the result.
// Edits from this bot are serialised so two admins do not overwrite each
// other's changes.
func (b *Bot) editCatalog(ctx context.Context, change func(models.Catalog) (models.Catalog, error)) (models.Catalog, error) {
	b.editMu.Lock()
	defer b.editMu.Unlock()

	items, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	next, err := change(items)
	if err != nil {
		return nil, err
	}
	if _, err := b.store.Replace(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// notFoundError is returned from an edit when the item id does not exist.
type notFoundError string

func (e notFoundError) Error() string { return fmt.Sprintf("No dish with id %q.", string(e)) }

func (b *Bot) editFailed(op string, err error) string {
	var nf notFoundError
	if errors.As(err, &nf) {
		return nf.Error()
	}
	return b.failed(op, err)
}

func (b *Bot) startAdd(userID int64) string {
	if msg := b.requireAdmin(userID); msg != "" {
		return msg
	}
	b.adders.set(userID, &adderState{Step: "name"})
	return "Send the name of the new dish (e.g. Masala Dosa). /cancel stops."
}

// handleAddFlow processes one plain-text answer in the /add flow. It returns
// "" when the user has no flow in progress.
func (b *Bot) handleAddFlow(ctx context.Context, userID int64, text string) string {
	st := b.adders.get(userID)
	if st == nil {
		return ""
	}
	if !b.admins.isAdmin(userID) {
		b.adders.clear(userID)
		return "🔒 Session ended. Send /login <password> to start again."
	}
	text = strings.TrimSpace(text)

	switch st.Step {
	case "name":
		if text == "" {
			return "The name cannot be empty. Send the name of the new dish:"
		}
		st.Name = text
		st.Step = "price"
		b.adders.set(userID, st)
		return fmt.Sprintf("Enter the price for «%s»:", text)
	case "price":
		price, err := strconv.ParseFloat(strings.ReplaceAll(text, " ", ""), 64)
		if err != nil || price < 0 {
			return "Invalid price. Send a number (e.g. 149 or 89.50)."
		}
		st.Price = price
		st.Step = "type"
		b.adders.set(userID, st)
		return fmt.Sprintf("Is it %s or %s?", models.TypeVeg, models.TypeNonVeg)
	case "type":
		st.Type = strings.ToLower(text)
		st.Step = "category"
		b.adders.set(userID, st)
		return "Which category (e.g. Starters, Main Course)?"
	case "category":
		st.Category = text
	}

	b.adders.clear(userID)
	item := models.MenuItem{
		ID:           b.newID(),
		Name:         st.Name,
		Price:        st.Price,
		Type:         st.Type,
		Category:     st.Category,
		Availability: models.AvailabilityAvailable,
	}
	next, err := b.editCatalog(ctx, func(items models.Catalog) (models.Catalog, error) {
		return append(items, item), nil
	})
	if err != nil {
		return b.editFailed("add item", err)
	}
	b.log.Info().Int64("user_id", userID).Str("item_id", item.ID).Int("items", len(next)).Msg("menu item added")
	return fmt.Sprintf("✅ Added %s — %s (id %s).", item.Name, formatPrice(item.Price), item.ID)
}

func (b *Bot) cancelAdd(userID int64) string {
	if b.adders.clear(userID) {
		return "✅ Cancelled."
	}
	return "Nothing to cancel."
}

func (b *Bot) deleteItem(ctx context.Context, userID int64, id string) string {
	if msg := b.requireAdmin(userID); msg != "" {
		return msg
	}
	if id == "" {
		return "Usage: /delete <id>"
	}
	next, err := b.editCatalog(ctx, func(items models.Catalog) (models.Catalog, error) {
		rest, ok := items.Without(id)
		if !ok {
			return nil, notFoundError(id)
		}
		return rest, nil
	})
	if err != nil {
		return b.editFailed("delete item", err)
	}
	b.log.Info().Int64("user_id", userID).Str("item_id", id).Int("items", len(next)).Msg("menu item deleted")
	return fmt.Sprintf("🗑 Deleted %s. %d items left.", id, len(next))
}

// parseAvailability accepts the two known states in any case.
func parseAvailability(s string) (string, bool) {
	switch {
	case strings.EqualFold(s, models.AvailabilityAvailable):
		return models.AvailabilityAvailable, true
	case strings.EqualFold(s, models.AvailabilityUnavailable):
		return models.AvailabilityUnavailable, true
	}
	return "", false
}

func (b *Bot) setAvailability(ctx context.Context, userID int64, arg string) string {
	if msg := b.requireAdmin(userID); msg != "" {
		return msg
	}
	id, raw, _ := strings.Cut(arg, " ")
	state, ok := parseAvailability(strings.TrimSpace(raw))
	if id == "" || !ok {
		return fmt.Sprintf("Usage: /availability <id> %s|%s", models.AvailabilityAvailable, models.AvailabilityUnavailable)
	}
	_, err := b.editCatalog(ctx, func(items models.Catalog) (models.Catalog, error) {
		i := items.IndexOf(id)
		if i < 0 {
			return nil, notFoundError(id)
		}
		items[i].Availability = state
		return items, nil
	})
	if err != nil {
		return b.editFailed("set availability", err)
	}
	b.log.Info().Int64("user_id", userID).Str("item_id", id).Str("availability", state).Msg("menu item availability changed")
	return fmt.Sprintf("✅ %s is now %s.", id, state)
}
