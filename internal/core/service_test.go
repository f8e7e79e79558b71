package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"farmcore/pkg/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, _ := newTestStore(t)
	return NewService(store)
}

func countEvents(doc *domain.Document, entityID string, typ domain.EventType) int {
	n := 0
	for _, ev := range doc.Events {
		if ev.EntityID == entityID && ev.EventType == typ {
			n++
		}
	}
	return n
}

func TestCreateAnimalWritesDetailAndEvent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	animal, err := svc.CreateAnimal(ctx, AnimalInput{
		EarTag:    "NO-1234",
		Sex:       domain.SexFemale,
		Status:    domain.StatusAlive,
		BirthDate: "2025-04-12",
		Notes:     "fin søye",
	})
	if err != nil {
		t.Fatalf("create animal: %v", err)
	}
	if animal.ExternalID != "NO-1234" {
		t.Fatalf("expected ear tag as external id, got %q", animal.ExternalID)
	}

	doc := svc.Store().Get()
	if _, ok := doc.Animals[animal.ID]; !ok {
		t.Fatal("animal missing from document")
	}
	det, ok := svc.SheepDetailFor(animal.ID)
	if !ok {
		t.Fatal("sheep detail missing")
	}
	if det.Notes != "fin søye" {
		t.Fatalf("expected detail notes, got %q", det.Notes)
	}
	if got := countEvents(doc, animal.ID, domain.EventCreated); got != 1 {
		t.Fatalf("expected one %q event, got %d", domain.EventCreated, got)
	}
	ev := doc.Events[0]
	if ev.UserID != doc.ActiveUserID {
		t.Fatalf("expected event authored by active user, got %q", ev.UserID)
	}
	if ev.Payload["earTag"] != "NO-1234" {
		t.Fatalf("expected ear tag in payload, got %v", ev.Payload)
	}
}

func TestCreateAnimalWithoutEarTagUsesIDAsExternalID(t *testing.T) {
	svc := newTestService(t)
	animal, err := svc.CreateAnimal(context.Background(), AnimalInput{Sex: domain.SexMale, Status: domain.StatusAlive})
	if err != nil {
		t.Fatalf("create animal: %v", err)
	}
	if animal.ExternalID != animal.ID {
		t.Fatalf("expected external id to fall back to id, got %q", animal.ExternalID)
	}
}

func TestUpdateAnimalSyncsDetailAndAppendsEvent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	animal, err := svc.CreateAnimal(ctx, AnimalInput{EarTag: "NO-1", Sex: domain.SexFemale, Status: domain.StatusAlive})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.UpdateAnimal(ctx, animal.ID, AnimalInput{
		EarTag: "NO-2",
		Sex:    domain.SexFemale,
		Status: domain.StatusSold,
		Notes:  "solgt på marked",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusSold || updated.EarTag != "NO-2" {
		t.Fatalf("update not applied: %+v", updated)
	}
	det, _ := svc.SheepDetailFor(animal.ID)
	if det.Notes != "solgt på marked" {
		t.Fatalf("detail notes not synced: %q", det.Notes)
	}
	if got := countEvents(svc.Store().Get(), animal.ID, domain.EventUpdated); got != 1 {
		t.Fatalf("expected one %q event, got %d", domain.EventUpdated, got)
	}
}

func TestUpdateAnimalNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.UpdateAnimal(context.Background(), "animal_missing", AnimalInput{})
	var nf domain.NotFoundError
	if !errors.As(err, &nf) || nf.Kind != domain.KindAnimal {
		t.Fatalf("expected animal NotFoundError, got %v", err)
	}
}

func TestDeleteAndRestoreAnimalSymmetry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	animal, err := svc.CreateAnimal(ctx, AnimalInput{EarTag: "NO-7", Sex: domain.SexFemale, Status: domain.StatusAlive})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteAnimal(ctx, animal.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	doc := svc.Store().Get()
	if !doc.Animals[animal.ID].Deleted() {
		t.Fatal("deletedAt not set")
	}
	if !hasMarker(doc.Trash.Animals, animal.ID) {
		t.Fatal("trash marker not written with deletedAt")
	}
	if err := VerifyTrash(doc); err != nil {
		t.Fatalf("trash invariant after delete: %v", err)
	}
	if _, ok := svc.GetAnimal(animal.ID); ok {
		t.Fatal("deleted animal still visible")
	}
	trash := svc.ListTrash()
	if len(trash.Animals) != 1 || trash.Animals[0].ID != animal.ID {
		t.Fatalf("expected animal in trash listing, got %+v", trash.Animals)
	}
	if got := len(svc.ListAnimals(domain.ProductionSheep)); got != 0 {
		t.Fatalf("deleted animal still listed: %d", got)
	}

	if err := svc.RestoreAnimal(ctx, animal.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	doc = svc.Store().Get()
	if doc.Animals[animal.ID].Deleted() {
		t.Fatal("deletedAt not cleared")
	}
	if hasMarker(doc.Trash.Animals, animal.ID) {
		t.Fatal("trash marker not removed with deletedAt")
	}
	if err := VerifyTrash(doc); err != nil {
		t.Fatalf("trash invariant after restore: %v", err)
	}
	if got := countEvents(doc, animal.ID, domain.EventDeleted); got != 1 {
		t.Fatalf("expected one %q event, got %d", domain.EventDeleted, got)
	}
	if got := countEvents(doc, animal.ID, domain.EventRestored); got != 1 {
		t.Fatalf("expected one %q event, got %d", domain.EventRestored, got)
	}
}

func TestDeleteAnimalTwiceNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	animal, err := svc.CreateAnimal(ctx, AnimalInput{Sex: domain.SexMale, Status: domain.StatusAlive})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.DeleteAnimal(ctx, animal.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	var nf domain.NotFoundError
	if err := svc.DeleteAnimal(ctx, animal.ID); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError on double delete, got %v", err)
	}
	if err := VerifyTrash(svc.Store().Get()); err != nil {
		t.Fatalf("trash invariant after failed delete: %v", err)
	}
}

func TestRestoreLiveAnimalNotFound(t *testing.T) {
	svc := newTestService(t)
	animal, err := svc.CreateAnimal(context.Background(), AnimalInput{Sex: domain.SexMale, Status: domain.StatusAlive})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var nf domain.NotFoundError
	if err := svc.RestoreAnimal(context.Background(), animal.ID); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError restoring live animal, got %v", err)
	}
}

func TestAddEventRequiresLiveAnimal(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AddEvent(context.Background(), EventInput{
		EntityType: domain.KindAnimal,
		EntityID:   "animal_missing",
		EventType:  domain.EventWeighing,
	})
	var nf domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAddEventForcesActorUserID(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	animal, err := svc.CreateAnimal(ctx, AnimalInput{Sex: domain.SexFemale, Status: domain.StatusAlive})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ev, err := svc.AddEvent(ctx, EventInput{
		EntityType: domain.KindAnimal,
		EntityID:   animal.ID,
		EventType:  domain.EventTreatment,
		UserID:     "smugglet-inn",
	})
	if err != nil {
		t.Fatalf("add event: %v", err)
	}
	if ev.UserID != svc.Store().Get().ActiveUserID {
		t.Fatalf("expected actor user id, got %q", ev.UserID)
	}
}

func TestAmendEventNotesKeepsIdentity(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	animal, err := svc.CreateAnimal(ctx, AnimalInput{Sex: domain.SexFemale, Status: domain.StatusAlive})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ev, err := svc.AddEvent(ctx, EventInput{
		EntityType: domain.KindAnimal,
		EntityID:   animal.ID,
		EventType:  domain.EventLambing,
		Notes:      "to lam",
	})
	if err != nil {
		t.Fatalf("add event: %v", err)
	}

	if err := svc.AmendEventNotes(ctx, ev.ID, "tre lam"); err != nil {
		t.Fatalf("amend: %v", err)
	}
	doc := svc.Store().Get()
	i := eventIndex(doc, ev.ID)
	if i < 0 {
		t.Fatal("event disappeared")
	}
	got := doc.Events[i]
	if got.Notes != "tre lam" {
		t.Fatalf("notes not amended: %q", got.Notes)
	}
	if got.EventType != ev.EventType || got.EntityID != ev.EntityID || !got.Date.Equal(ev.Date) {
		t.Fatalf("identity fields changed: %+v", got)
	}
}

func TestDeleteAndRestoreEvent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	animal, err := svc.CreateAnimal(ctx, AnimalInput{Sex: domain.SexFemale, Status: domain.StatusAlive})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ev, err := svc.AddEvent(ctx, EventInput{
		EntityType: domain.KindAnimal,
		EntityID:   animal.ID,
		EventType:  domain.EventTagging,
	})
	if err != nil {
		t.Fatalf("add event: %v", err)
	}

	if err := svc.DeleteEvent(ctx, ev.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	doc := svc.Store().Get()
	if err := VerifyTrash(doc); err != nil {
		t.Fatalf("trash invariant after event delete: %v", err)
	}
	for _, listed := range svc.ListAnimalEvents(animal.ID) {
		if listed.ID == ev.ID {
			t.Fatal("deleted event still listed")
		}
	}

	if err := svc.RestoreEvent(ctx, ev.ID); err != nil {
		t.Fatalf("restore event: %v", err)
	}
	if err := VerifyTrash(svc.Store().Get()); err != nil {
		t.Fatalf("trash invariant after event restore: %v", err)
	}
}

func TestListAnimalEventsNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	animal, err := svc.CreateAnimal(ctx, AnimalInput{Sex: domain.SexFemale, Status: domain.StatusAlive})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, typ := range []domain.EventType{domain.EventWeighing, domain.EventTreatment, domain.EventMating} {
		if _, err := svc.AddEvent(ctx, EventInput{
			EntityType: domain.KindAnimal,
			EntityID:   animal.ID,
			EventType:  typ,
		}); err != nil {
			t.Fatalf("add %s: %v", typ, err)
		}
	}
	events := svc.ListAnimalEvents(animal.ID)
	for i := 1; i < len(events); i++ {
		if events[i].Date.After(events[i-1].Date) {
			t.Fatalf("events not newest first: %v then %v", events[i-1].Date, events[i].Date)
		}
	}
}

func TestSetActiveUserValidatesTarget(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.SetActiveUser(ctx, "u2"); err != nil {
		t.Fatalf("switch to worker: %v", err)
	}
	if got := svc.Store().Get().ActiveUserID; got != "u2" {
		t.Fatalf("active user not switched: %q", got)
	}

	var nf domain.NotFoundError
	if err := svc.SetActiveUser(ctx, "u99"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError for unknown user, got %v", err)
	}
}

func TestSettingsRequireOwner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if err := svc.SetActiveUser(ctx, "u2"); err != nil {
		t.Fatalf("switch to worker: %v", err)
	}

	if _, err := svc.AddUser(ctx, "nykar", domain.RoleWorker); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner from AddUser, got %v", err)
	}
	if err := svc.SetFarmName(ctx, "skal ikke skje"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner from SetFarmName, got %v", err)
	}
	if err := svc.SetProductionModule(ctx, domain.ProductionCattle, true); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner from SetProductionModule, got %v", err)
	}
}

func TestDeactivateUserKeepsActiveUserValid(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.DeactivateUser(ctx, "u1"); err == nil {
		t.Fatal("expected rejection when deactivating the active user")
	}
	if err := svc.DeactivateUser(ctx, "u2"); err != nil {
		t.Fatalf("deactivate worker: %v", err)
	}
	if err := svc.SetActiveUser(ctx, "u2"); err == nil {
		t.Fatal("expected rejection when activating a deactivated user")
	}
}

func TestSetCountyClearsMunicipality(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if err := svc.SetCounty(ctx, "46", "Vestland"); err != nil {
		t.Fatalf("set county: %v", err)
	}
	if err := svc.SetMunicipality(ctx, "4601", "Bergen"); err != nil {
		t.Fatalf("set municipality: %v", err)
	}
	if err := svc.SetCounty(ctx, "50", "Trøndelag"); err != nil {
		t.Fatalf("change county: %v", err)
	}
	geo := svc.Store().Get().Meta.Geo
	if geo.MunicipalityCode != "" || geo.MunicipalityName != "" {
		t.Fatalf("municipality not cleared on county change: %+v", geo)
	}
}

func TestFieldPlanUpsertReplacesSameYear(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	field, err := svc.CreateField(ctx, FieldInput{Name: "Heimjordet", FullyCultivatedDaa: 25, Crop: "gras"})
	if err != nil {
		t.Fatalf("create field: %v", err)
	}

	first, err := svc.UpsertFieldPlan(ctx, field.ID, 2026, "gras", "")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := svc.UpsertFieldPlan(ctx, field.ID, 2026, "bygg", "skifte")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected replacement for same field/year, got new plan %q", second.ID)
	}
	if got := len(svc.Store().Get().FieldPlans); got != 1 {
		t.Fatalf("expected one plan, got %d", got)
	}
	if second.Crop != "bygg" {
		t.Fatalf("plan crop not replaced: %q", second.Crop)
	}
}

func TestFieldJournalsRequireLiveField(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	field, err := svc.CreateField(ctx, FieldInput{Name: "Utmarka"})
	if err != nil {
		t.Fatalf("create field: %v", err)
	}
	if _, err := svc.AddFertilizerEntry(ctx, field.ID, "25-2-6", 40, ""); err != nil {
		t.Fatalf("fertilizer entry: %v", err)
	}
	if _, err := svc.AddPlantProtectionEntry(ctx, field.ID, "MCPA", "150 ml/daa", ""); err != nil {
		t.Fatalf("plant protection entry: %v", err)
	}

	if err := svc.DeleteField(ctx, field.ID); err != nil {
		t.Fatalf("delete field: %v", err)
	}
	var nf domain.NotFoundError
	if _, err := svc.AddFertilizerEntry(ctx, field.ID, "25-2-6", 40, ""); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError on deleted field, got %v", err)
	}
	if err := VerifyTrash(svc.Store().Get()); err != nil {
		t.Fatalf("trash invariant: %v", err)
	}
	if err := svc.RestoreField(ctx, field.ID); err != nil {
		t.Fatalf("restore field: %v", err)
	}
	if got := len(svc.ListFields()); got != 1 {
		t.Fatalf("expected restored field listed, got %d", got)
	}
}

func TestWorkClockSingleRunningInterval(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	started, err := svc.StartWork(ctx, "fjøsstell")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.StoppedAt != nil {
		t.Fatal("fresh interval must be open")
	}
	if _, err := svc.StartWork(ctx, "dobbelt"); err == nil {
		t.Fatal("expected second start to fail while clock runs")
	}

	stopped, err := svc.StopWork(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if stopped.StoppedAt == nil {
		t.Fatal("stop did not close the interval")
	}
	if _, err := svc.StopWork(ctx); err == nil {
		t.Fatal("expected stop without running clock to fail")
	}

	// Another user's clock is independent.
	if err := svc.SetActiveUser(ctx, "u2"); err != nil {
		t.Fatalf("switch user: %v", err)
	}
	if _, err := svc.StartWork(ctx, ""); err != nil {
		t.Fatalf("start for second user: %v", err)
	}
	logs := svc.ListWorkLogs("u1")
	if len(logs) != 1 || logs[0].ID != started.ID {
		t.Fatalf("expected one interval for u1, got %+v", logs)
	}
}

func TestEntityUpdatedAtNeverDecreases(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store, _ := newTestStore(t, WithClock(func() time.Time { return now }))
	svc := NewService(store)
	ctx := context.Background()

	animal, err := svc.CreateAnimal(ctx, AnimalInput{
		EarTag: "NO-77",
		Sex:    domain.SexFemale,
		Status: domain.StatusAlive,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// The wall clock steps backwards before the next commit.
	now = time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateAnimal(ctx, animal.ID, AnimalInput{
		EarTag: "NO-77",
		Sex:    domain.SexFemale,
		Status: domain.StatusAlive,
		Notes:  "klippet",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if updated.UpdatedAt.Before(animal.UpdatedAt) {
		t.Fatalf("entity updatedAt went backwards: %v -> %v", animal.UpdatedAt, updated.UpdatedAt)
	}
	doc := store.Get()
	if got := doc.Animals[animal.ID].UpdatedAt; got.Before(animal.UpdatedAt) {
		t.Fatalf("committed entity updatedAt went backwards: %v -> %v", animal.UpdatedAt, got)
	}
	if doc.UpdatedAt.Before(doc.Animals[animal.ID].UpdatedAt) {
		t.Fatalf("root updatedAt %v trails entity updatedAt %v", doc.UpdatedAt, doc.Animals[animal.ID].UpdatedAt)
	}
}

func TestStopWorkReturnsDetachedCopy(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.StartWork(ctx, "gjerding"); err != nil {
		t.Fatalf("start: %v", err)
	}
	stopped, err := svc.StopWork(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}

	// Writing through the returned interval must not reach committed state.
	want := *stopped.StoppedAt
	*stopped.StoppedAt = want.Add(-time.Hour)

	logs := svc.ListWorkLogs(stopped.UserID)
	if len(logs) != 1 || logs[0].StoppedAt == nil {
		t.Fatalf("expected one closed interval, got %+v", logs)
	}
	if !logs[0].StoppedAt.Equal(want) {
		t.Fatalf("caller write reached the committed document: %v", logs[0].StoppedAt)
	}

	// The listed copies are detached as well.
	*logs[0].StoppedAt = want.Add(time.Hour)
	if got := svc.Store().Get().WorkLogs; !got[len(got)-1].StoppedAt.Equal(want) {
		t.Fatalf("list write reached the committed document: %v", got[len(got)-1].StoppedAt)
	}
}
