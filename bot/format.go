package bot

import (
	"fmt"
	"strconv"
	"strings"

	"menu-service/models"
)

// formatPrice prints whole prices without decimals.
func formatPrice(p float64) string {
	if p == float64(int64(p)) {
		return strconv.FormatInt(int64(p), 10)
	}
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func typeMark(t string) string {
	switch t {
	case models.TypeVeg:
		return "🟢"
	case models.TypeNonVeg:
		return "🔴"
	}
	return "⚪"
}

// formatMenu renders the catalog grouped by category, keeping the order in
// which categories first appear.
func formatMenu(title string, items models.Catalog) string {
	if len(items) == 0 {
		return title + "\n\nThe menu is empty."
	}
	var order []string
	byCat := make(map[string][]models.MenuItem)
	for _, it := range items {
		cat := it.Category
		if cat == "" {
			cat = "Other"
		}
		if _, seen := byCat[cat]; !seen {
			order = append(order, cat)
		}
		byCat[cat] = append(byCat[cat], it)
	}

	var b strings.Builder
	b.WriteString(title)
	for _, cat := range order {
		b.WriteString("\n\n" + cat + "\n")
		for _, it := range byCat[cat] {
			line := fmt.Sprintf("%s %s — %s", typeMark(it.Type), it.Name, formatPrice(it.Price))
			if it.Popular {
				line += " ⭐"
			}
			if it.Availability == models.AvailabilityUnavailable {
				line += " (unavailable)"
			}
			b.WriteString(line + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// formatItem renders a single item with its details and pricing options.
func formatItem(it models.MenuItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", typeMark(it.Type), it.Name)
	fmt.Fprintf(&b, "Price: %s\n", formatPrice(it.Price))
	if it.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", it.Category)
	}
	if it.Availability != "" {
		fmt.Fprintf(&b, "Availability: %s\n", it.Availability)
	}
	if it.Description != "" {
		b.WriteString("\n" + it.Description + "\n")
	}
	if len(it.PricingOptions) > 0 {
		b.WriteString("\nOptions:\n")
		for _, o := range it.PricingOptions {
			fmt.Fprintf(&b, "• %s — %s\n", o.Label, formatPrice(o.Price))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// parseCommand splits "/item@MenuBot abc" into ("item", "abc").
func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	return strings.ToLower(head), strings.TrimSpace(rest)
}
