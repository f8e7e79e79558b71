package domain

import "time"

// Clone returns a deep copy of the document. The copy shares no mutable
// state with the receiver: a transaction draft produced by Clone can be
// mutated freely without the committed snapshot becoming reachable.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	cp := *d

	cp.Users = append([]User(nil), d.Users...)
	cp.Features.ProductionModules = cloneFlags(d.Features.ProductionModules)

	cp.Animals = make(map[string]Animal, len(d.Animals))
	for k, v := range d.Animals {
		cp.Animals[k] = cloneAnimal(v)
	}
	cp.SheepDetails = make(map[string]SheepDetail, len(d.SheepDetails))
	for k, v := range d.SheepDetails {
		cp.SheepDetails[k] = cloneSheepDetail(v)
	}
	cp.Fields = make(map[string]Field, len(d.Fields))
	for k, v := range d.Fields {
		cp.Fields[k] = cloneField(v)
	}
	cp.FieldPlans = make(map[string]FieldPlan, len(d.FieldPlans))
	for k, v := range d.FieldPlans {
		cp.FieldPlans[k] = cloneFieldPlan(v)
	}
	cp.FertilizerPlans = make(map[string]FertilizerPlan, len(d.FertilizerPlans))
	for k, v := range d.FertilizerPlans {
		cp.FertilizerPlans[k] = cloneFertilizerPlan(v)
	}
	cp.FertilizerLog = append([]FertilizerEntry(nil), d.FertilizerLog...)
	cp.PlantProtectionLog = append([]PlantProtectionEntry(nil), d.PlantProtectionLog...)

	cp.WorkLogs = make([]WorkLog, len(d.WorkLogs))
	for i, w := range d.WorkLogs {
		cp.WorkLogs[i] = CloneWorkLog(w)
	}

	cp.Events = make([]Event, len(d.Events))
	for i, ev := range d.Events {
		cp.Events[i] = CloneEvent(ev)
	}

	cp.Trash = Trash{
		Animals: append([]TrashMarker(nil), d.Trash.Animals...),
		Fields:  append([]TrashMarker(nil), d.Trash.Fields...),
		Events:  append([]TrashMarker(nil), d.Trash.Events...),
	}
	return &cp
}

func cloneBase(b Base) Base {
	b.DeletedAt = cloneTime(b.DeletedAt)
	return b
}

func cloneAnimal(a Animal) Animal {
	a.Base = cloneBase(a.Base)
	a.GroupID = cloneString(a.GroupID)
	a.PastureID = cloneString(a.PastureID)
	return a
}

func cloneSheepDetail(s SheepDetail) SheepDetail {
	s.Base = cloneBase(s.Base)
	return s
}

func cloneField(f Field) Field {
	f.Base = cloneBase(f.Base)
	return f
}

func cloneFieldPlan(p FieldPlan) FieldPlan {
	p.Base = cloneBase(p.Base)
	return p
}

func cloneFertilizerPlan(p FertilizerPlan) FertilizerPlan {
	p.Base = cloneBase(p.Base)
	return p
}

// CloneWorkLog copies a work interval including its stop timestamp, so the
// copy can be handed out without aliasing committed state.
func CloneWorkLog(w WorkLog) WorkLog {
	w.StoppedAt = cloneTime(w.StoppedAt)
	return w
}

// CloneEvent deep-copies an event including its free-form payload.
func CloneEvent(ev Event) Event {
	ev.Payload = clonePayload(ev.Payload)
	ev.DeletedAt = cloneTime(ev.DeletedAt)
	return ev
}

func cloneFlags(in map[ProductionType]bool) map[ProductionType]bool {
	if in == nil {
		return nil
	}
	out := make(map[ProductionType]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// clonePayload deep-copies a free-form JSON-shaped value. Payloads may nest
// maps and slices arbitrarily, so a top-level map copy is not enough.
func clonePayload(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return clonePayload(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}
