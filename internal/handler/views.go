package handler

import (
	"time"

	"cinelight-api/internal/domain"
	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func dateString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

// userView never includes the password hash.
func userView(u domain.User) map[string]any {
	return map[string]any{
		"id":        u.ID,
		"username":  u.Username,
		"email":     u.Email,
		"firstName": u.FirstName,
		"lastName":  u.LastName,
		"isActive":  u.IsActive,
		"role":      string(u.Role),
		"createdAt": timestamp(u.CreatedAt),
		"updatedAt": timestamp(u.UpdatedAt),
	}
}

func categoryView(c domain.EquipmentCategory) map[string]any {
	m := map[string]any{
		"id":          c.ID,
		"name":        c.Name,
		"description": c.Description,
		"isActive":    c.IsActive,
		"createdAt":   timestamp(c.CreatedAt),
		"updatedAt":   timestamp(c.UpdatedAt),
	}
	if c.Equipment != nil {
		m["equipment"] = mapSlice(c.Equipment, equipmentView)
	}
	return m
}

func equipmentView(e domain.Equipment) map[string]any {
	m := map[string]any{
		"id":               e.ID,
		"name":             e.Name,
		"description":      e.Description,
		"dailyRentalPrice": money(e.DailyRentalPrice),
		"quantity":         e.Quantity,
		"categoryId":       e.CategoryID,
		"isActive":         e.IsActive,
		"createdAt":        timestamp(e.CreatedAt),
		"updatedAt":        timestamp(e.UpdatedAt),
	}
	if e.CategoryName != "" {
		m["category"] = map[string]any{"id": e.CategoryID, "name": e.CategoryName}
	}
	return m
}

func bundleView(b domain.EquipmentBundle) map[string]any {
	items := make([]map[string]any, 0, len(b.Items))
	for _, it := range b.Items {
		item := map[string]any{
			"id":          it.ID,
			"bundleId":    it.BundleID,
			"equipmentId": it.EquipmentID,
			"quantity":    it.Quantity,
		}
		if it.Equipment != nil {
			item["equipment"] = equipmentView(*it.Equipment)
		}
		items = append(items, item)
	}
	return map[string]any{
		"id":               b.ID,
		"name":             b.Name,
		"description":      b.Description,
		"dailyRentalPrice": money(b.DailyRentalPrice),
		"discount":         money(b.Discount),
		"isActive":         b.IsActive,
		"items":            items,
		"createdAt":        timestamp(b.CreatedAt),
		"updatedAt":        timestamp(b.UpdatedAt),
	}
}

func quotationView(q domain.Quotation) map[string]any {
	m := map[string]any{
		"id":                 q.ID,
		"quotationNumber":    q.QuotationNumber,
		"clientName":         q.ClientName,
		"clientEmail":        q.ClientEmail,
		"clientPhone":        q.ClientPhone,
		"clientAddress":      q.ClientAddress,
		"projectName":        q.ProjectName,
		"projectDescription": q.ProjectDescription,
		"issueDate":          q.IssueDate.Format(dateLayout),
		"validUntil":         dateString(q.ValidUntil),
		"subtotal":           money(q.Subtotal),
		"tax":                money(q.Tax),
		"discount":           money(q.Discount),
		"total":              money(q.Total),
		"status":             string(q.Status),
		"notes":              q.Notes,
		"terms":              q.Terms,
		"createdAt":          timestamp(q.CreatedAt),
		"updatedAt":          timestamp(q.UpdatedAt),
	}
	if q.Sections != nil {
		m["sections"] = mapSlice(q.Sections, sectionView)
	}
	if q.Items != nil {
		m["items"] = mapSlice(q.Items, itemView)
	}
	return m
}

func sectionView(s domain.QuotationSection) map[string]any {
	m := map[string]any{
		"id":          s.ID,
		"quotationId": s.QuotationID,
		"name":        s.Name,
		"date":        dateString(s.Date),
		"description": s.Description,
		"subtotal":    money(s.Subtotal),
		"isActive":    s.IsActive,
		"createdAt":   timestamp(s.CreatedAt),
		"updatedAt":   timestamp(s.UpdatedAt),
	}
	if s.Items != nil {
		m["items"] = mapSlice(s.Items, itemView)
	}
	return m
}

func itemView(it domain.QuotationItem) map[string]any {
	return map[string]any{
		"id":          it.ID,
		"quotationId": it.QuotationID,
		"sectionId":   it.SectionID,
		"equipmentId": it.EquipmentID,
		"itemName":    it.ItemName,
		"description": it.Description,
		"quantity":    it.Quantity,
		"unit":        it.Unit,
		"pricePerDay": money(it.PricePerDay),
		"days":        it.Days,
		"total":       money(it.Total),
		"remarks":     it.Remarks,
		"type":        string(it.Type),
		"isActive":    it.IsActive,
		"createdAt":   timestamp(it.CreatedAt),
		"updatedAt":   timestamp(it.UpdatedAt),
	}
}

func mapSlice[T any](in []T, fn func(T) map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
