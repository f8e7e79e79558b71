package core

import (
	"time"

	"farmcore/pkg/domain"
)

// SchemaVersion is the only defined document shape. It is written once at
// seed time and never changes; additive collections decode as empty values
// and do not bump it.
const SchemaVersion = 1

// DefaultAppName identifies the application inside seeded documents.
const DefaultAppName = "farmcore"

// DefaultDocument builds the seed document: two default users with the
// owner active, the sheep and plant modules enabled, and every collection
// present but empty.
func DefaultDocument(now time.Time) *domain.Document {
	owner := domain.User{
		ID:        "u1",
		Name:      "storbonden",
		Role:      domain.RoleOwner,
		Active:    true,
		CreatedAt: now,
	}
	worker := domain.User{
		ID:        "u2",
		Name:      "avløser1",
		Role:      domain.RoleWorker,
		Active:    true,
		CreatedAt: now,
	}
	return &domain.Document{
		SchemaVersion: SchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
		Meta: domain.Meta{
			AppName:  DefaultAppName,
			FarmName: "Min gård",
		},
		Users:        []domain.User{owner, worker},
		ActiveUserID: owner.ID,
		Features: domain.Features{
			ProductionModules: map[domain.ProductionType]bool{
				domain.ProductionSheep:   true,
				domain.ProductionPlant:   true,
				domain.ProductionCattle:  false,
				domain.ProductionPoultry: false,
			},
		},
		Animals:            map[string]domain.Animal{},
		SheepDetails:       map[string]domain.SheepDetail{},
		Fields:             map[string]domain.Field{},
		FieldPlans:         map[string]domain.FieldPlan{},
		FertilizerPlans:    map[string]domain.FertilizerPlan{},
		FertilizerLog:      []domain.FertilizerEntry{},
		PlantProtectionLog: []domain.PlantProtectionEntry{},
		WorkLogs:           []domain.WorkLog{},
		Events:             []domain.Event{},
		Trash: domain.Trash{
			Animals: []domain.TrashMarker{},
			Fields:  []domain.TrashMarker{},
			Events:  []domain.TrashMarker{},
		},
	}
}
