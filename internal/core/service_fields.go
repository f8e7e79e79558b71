package core

import (
	"context"
	"sort"

	"farmcore/pkg/domain"
)

// FieldInput carries the editable attributes of a field.
type FieldInput struct {
	Name                 string
	FullyCultivatedDaa   float64
	SurfaceCultivatedDaa float64
	InfieldGrazingDaa    float64
	Crop                 string
}

// CreateField records a new field and its "opprettet" event.
func (s *Service) CreateField(ctx context.Context, in FieldInput) (domain.Field, error) {
	var created domain.Field
	err := s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		now := s.store.now()
		fieldID := newID("field")
		created = domain.Field{
			Base: domain.Base{
				ID:        fieldID,
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
				CreatedBy: user.ID,
				UpdatedBy: user.ID,
			},
			Name:                 in.Name,
			FullyCultivatedDaa:   in.FullyCultivatedDaa,
			SurfaceCultivatedDaa: in.SurfaceCultivatedDaa,
			InfieldGrazingDaa:    in.InfieldGrazingDaa,
			Crop:                 in.Crop,
		}
		draft.Fields[fieldID] = created
		draft.Events = append(draft.Events, NewEvent(now, EventInput{
			ProductionType: domain.ProductionPlant,
			EntityType:     domain.KindField,
			EntityID:       fieldID,
			EventType:      domain.EventCreated,
			Payload:        map[string]any{"name": in.Name},
			UserID:         user.ID,
		}))
		return nil
	})
	return created, err
}

// UpdateField rewrites a field's editable attributes.
func (s *Service) UpdateField(ctx context.Context, fieldID string, in FieldInput) (domain.Field, error) {
	var updated domain.Field
	err := s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		cur, ok := draft.Fields[fieldID]
		if !ok || cur.Deleted() {
			return domain.NotFoundError{Kind: domain.KindField, ID: fieldID}
		}
		now := s.store.now()
		cur.Name = in.Name
		cur.FullyCultivatedDaa = in.FullyCultivatedDaa
		cur.SurfaceCultivatedDaa = in.SurfaceCultivatedDaa
		cur.InfieldGrazingDaa = in.InfieldGrazingDaa
		cur.Crop = in.Crop
		cur.UpdatedAt = now
		cur.UpdatedBy = user.ID
		draft.Fields[fieldID] = cur
		draft.Events = append(draft.Events, NewEvent(now, EventInput{
			ProductionType: domain.ProductionPlant,
			EntityType:     domain.KindField,
			EntityID:       fieldID,
			EventType:      domain.EventUpdated,
			Payload:        map[string]any{"name": in.Name},
			UserID:         user.ID,
		}))
		updated = cur
		return nil
	})
	return updated, err
}

// DeleteField soft-deletes a field into the fields trash bucket.
func (s *Service) DeleteField(ctx context.Context, fieldID string) error {
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		cur, ok := draft.Fields[fieldID]
		if !ok || cur.Deleted() {
			return domain.NotFoundError{Kind: domain.KindField, ID: fieldID}
		}
		now := s.store.now()
		cur.DeletedAt = &now
		cur.UpdatedAt = now
		cur.UpdatedBy = user.ID
		draft.Fields[fieldID] = cur
		draft.Trash.Fields = pushMarker(draft.Trash.Fields, fieldID, now)
		return nil
	})
}

// RestoreField brings a soft-deleted field back from the trash.
func (s *Service) RestoreField(ctx context.Context, fieldID string) error {
	return s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		cur, ok := draft.Fields[fieldID]
		if !ok || !cur.Deleted() {
			return domain.NotFoundError{Kind: domain.KindField, ID: fieldID}
		}
		now := s.store.now()
		cur.DeletedAt = nil
		cur.UpdatedAt = now
		cur.UpdatedBy = user.ID
		draft.Fields[fieldID] = cur
		draft.Trash.Fields, _ = removeMarker(draft.Trash.Fields, fieldID)
		return nil
	})
}

// ListFields returns live fields sorted by name.
func (s *Service) ListFields() []domain.Field {
	doc := s.store.Get()
	out := make([]domain.Field, 0, len(doc.Fields))
	for _, f := range doc.Fields {
		if !f.Deleted() {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// UpsertFieldPlan writes the plan for one field and year, replacing an
// existing plan for the same field/year pair.
func (s *Service) UpsertFieldPlan(ctx context.Context, fieldID string, year int, crop, notes string) (domain.FieldPlan, error) {
	var plan domain.FieldPlan
	err := s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		if f, ok := draft.Fields[fieldID]; !ok || f.Deleted() {
			return domain.NotFoundError{Kind: domain.KindField, ID: fieldID}
		}
		now := s.store.now()
		for id, existing := range draft.FieldPlans {
			if existing.FieldID == fieldID && existing.Year == year && !existing.Deleted() {
				existing.Crop = crop
				existing.Notes = notes
				existing.UpdatedAt = now
				existing.UpdatedBy = user.ID
				draft.FieldPlans[id] = existing
				plan = existing
				return nil
			}
		}
		planID := newID("plan")
		plan = domain.FieldPlan{
			Base: domain.Base{
				ID:        planID,
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
				CreatedBy: user.ID,
				UpdatedBy: user.ID,
			},
			FieldID: fieldID,
			Year:    year,
			Crop:    crop,
			Notes:   notes,
		}
		draft.FieldPlans[planID] = plan
		return nil
	})
	return plan, err
}

// AddFertilizerEntry appends one line to the fertilizer journal.
func (s *Service) AddFertilizerEntry(ctx context.Context, fieldID, product string, kgPerDaa float64, notes string) (domain.FertilizerEntry, error) {
	var entry domain.FertilizerEntry
	err := s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		if f, ok := draft.Fields[fieldID]; !ok || f.Deleted() {
			return domain.NotFoundError{Kind: domain.KindField, ID: fieldID}
		}
		entry = domain.FertilizerEntry{
			ID:       newID("fert"),
			FieldID:  fieldID,
			Date:     s.store.now(),
			Product:  product,
			KgPerDaa: kgPerDaa,
			Notes:    notes,
			UserID:   user.ID,
		}
		draft.FertilizerLog = append(draft.FertilizerLog, entry)
		return nil
	})
	return entry, err
}

// AddPlantProtectionEntry appends one line to the plant protection journal.
func (s *Service) AddPlantProtectionEntry(ctx context.Context, fieldID, product, dose, notes string) (domain.PlantProtectionEntry, error) {
	var entry domain.PlantProtectionEntry
	err := s.store.Transaction(ctx, func(draft *domain.Document) error {
		user, err := actor(draft)
		if err != nil {
			return err
		}
		if f, ok := draft.Fields[fieldID]; !ok || f.Deleted() {
			return domain.NotFoundError{Kind: domain.KindField, ID: fieldID}
		}
		entry = domain.PlantProtectionEntry{
			ID:      newID("pp"),
			FieldID: fieldID,
			Date:    s.store.now(),
			Product: product,
			Dose:    dose,
			Notes:   notes,
			UserID:  user.ID,
		}
		draft.PlantProtectionLog = append(draft.PlantProtectionLog, entry)
		return nil
	})
	return entry, err
}
