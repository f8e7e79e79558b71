// Package domain defines the root document, the persistent entities it
// holds, and the persistence contracts used by farmcore.
package domain

import "time"

// Role identifies what a user is allowed to do on the farm.
type Role string

// Supported user roles. Owners may change settings and manage users;
// workers record day-to-day data.
const (
	RoleOwner  Role = "owner"
	RoleWorker Role = "worker"
)

// ProductionType identifies a production branch of the farm.
type ProductionType string

// Production branches toggled through the features block.
const (
	ProductionSheep   ProductionType = "sau"
	ProductionPlant   ProductionType = "plante"
	ProductionCattle  ProductionType = "storfe"
	ProductionPoultry ProductionType = "fjorfe"
)

// EntityKind identifies the type of record an event or trash marker refers to.
type EntityKind string

// Entity kinds referenced by events and trash buckets.
const (
	KindAnimal EntityKind = "animal"
	KindField  EntityKind = "field"
	KindEvent  EntityKind = "event"
	KindUser   EntityKind = "user"
)

// EventType classifies an audit event. Values keep the vocabulary of the
// recorded data so existing documents read back unchanged.
type EventType string

// Lifecycle event types written by the store itself.
const (
	EventCreated  EventType = "opprettet"
	EventUpdated  EventType = "endret"
	EventDeleted  EventType = "slettet"
	EventRestored EventType = "gjenopprettet"
)

// Domain event types recorded against individual sheep.
const (
	EventTagging   EventType = "merking"
	EventMating    EventType = "parring"
	EventLambing   EventType = "lamming"
	EventTreatment EventType = "behandling"
	EventWeighing  EventType = "veiing"
	EventOther     EventType = "annet"
)

// AnimalStatus tracks whether an animal is still part of the herd.
type AnimalStatus string

// Animal statuses.
const (
	StatusAlive AnimalStatus = "alive"
	StatusSold  AnimalStatus = "sold"
	StatusDead  AnimalStatus = "dead"
)

// Sex of an animal.
type Sex string

// Animal sexes; unknown is a valid recorded value.
const (
	SexFemale  Sex = "female"
	SexMale    Sex = "male"
	SexUnknown Sex = "unknown"
)

// Base carries the audit fields shared by every soft-deletable record.
type Base struct {
	ID        string     `json:"id"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	CreatedBy string     `json:"createdBy"`
	UpdatedBy string     `json:"updatedBy"`
	DeletedAt *time.Time `json:"deletedAt"`
}

// Deleted reports whether the record is currently soft-deleted.
func (b Base) Deleted() bool { return b.DeletedAt != nil }

// User is an account that can be selected as the active user. Users are
// never soft-deleted; they are deactivated instead.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// Geo records the selected county and municipality used by rule packages.
type Geo struct {
	CountyCode       string `json:"countyCode"`
	CountyName       string `json:"countyName"`
	MunicipalityCode string `json:"municipalityCode"`
	MunicipalityName string `json:"municipalityName"`
}

// Meta holds application and farm identity.
type Meta struct {
	AppName  string `json:"appName"`
	FarmName string `json:"farmName"`
	Geo      Geo    `json:"geo"`
}

// Features gates optional production modules.
type Features struct {
	ProductionModules map[ProductionType]bool `json:"productionModules"`
}

// Animal is an individual animal in one of the production branches.
type Animal struct {
	Base
	ProductionType ProductionType `json:"productionType"`
	ExternalID     string         `json:"externalId"`
	EarTag         string         `json:"earTag"`
	Sex            Sex            `json:"sex"`
	BirthDate      string         `json:"birthDate"`
	Status         AnimalStatus   `json:"status"`
	GroupID        *string        `json:"groupId"`
	PastureID      *string        `json:"pastureId"`
}

// SheepDetail holds sheep-specific data for an animal. It back-references
// its parent through AnimalID and has an independent lifecycle, though it is
// conventionally created and deleted alongside the animal.
type SheepDetail struct {
	Base
	AnimalID string `json:"animalId"`
	Notes    string `json:"notes"`
}

// Field is a cultivated parcel with areas in decares per cultivation class.
type Field struct {
	Base
	Name                 string  `json:"name"`
	FullyCultivatedDaa   float64 `json:"fullyCultivatedDaa"`
	SurfaceCultivatedDaa float64 `json:"surfaceCultivatedDaa"`
	InfieldGrazingDaa    float64 `json:"infieldGrazingDaa"`
	Crop                 string  `json:"crop"`
}

// FieldPlan is the yearly plan for one field.
type FieldPlan struct {
	Base
	FieldID string `json:"fieldId"`
	Year    int    `json:"year"`
	Crop    string `json:"crop"`
	Notes   string `json:"notes"`
}

// FertilizerPlan is the planned fertilization for one field and year.
type FertilizerPlan struct {
	Base
	FieldID        string  `json:"fieldId"`
	Year           int     `json:"year"`
	Product        string  `json:"product"`
	AmountKgPerDaa float64 `json:"amountKgPerDaa"`
	Notes          string  `json:"notes"`
}

// FertilizerEntry is one journal line of applied fertilizer.
type FertilizerEntry struct {
	ID       string    `json:"id"`
	FieldID  string    `json:"fieldId"`
	Date     time.Time `json:"date"`
	Product  string    `json:"product"`
	KgPerDaa float64   `json:"kgPerDaa"`
	Notes    string    `json:"notes"`
	UserID   string    `json:"userId"`
}

// PlantProtectionEntry is one journal line of applied plant protection.
type PlantProtectionEntry struct {
	ID      string    `json:"id"`
	FieldID string    `json:"fieldId"`
	Date    time.Time `json:"date"`
	Product string    `json:"product"`
	Dose    string    `json:"dose"`
	Notes   string    `json:"notes"`
	UserID  string    `json:"userId"`
}

// WorkLog is one start/stop interval of the work clock. StoppedAt is nil
// while the clock is running.
type WorkLog struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	StartedAt time.Time  `json:"startedAt"`
	StoppedAt *time.Time `json:"stoppedAt"`
	Notes     string     `json:"notes"`
}

// Event is one audit record. EntityID, EventType and Date identify the
// event and are immutable after creation; only Notes, UpdatedAt and
// UpdatedBy may be amended.
type Event struct {
	ID             string         `json:"id"`
	ProductionType ProductionType `json:"productionType"`
	EntityType     EntityKind     `json:"entityType"`
	EntityID       string         `json:"entityId"`
	EventType      EventType      `json:"eventType"`
	Date           time.Time      `json:"date"`
	Payload        map[string]any `json:"payload"`
	Notes          string         `json:"notes"`
	UserID         string         `json:"userId"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	UpdatedBy      string         `json:"updatedBy"`
	DeletedAt      *time.Time     `json:"deletedAt"`
}

// TrashMarker records one soft-deleted record in a trash bucket. The marker
// and the record's deletedAt field are two projections of the same fact and
// are only ever written together.
type TrashMarker struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deletedAt"`
}

// Trash indexes soft-deleted records per entity kind.
type Trash struct {
	Animals []TrashMarker `json:"animals"`
	Fields  []TrashMarker `json:"fields"`
	Events  []TrashMarker `json:"events"`
}

// Document is the root state tree. One decoded Document is the unit of
// persistence: it is loaded at startup, cloned per transaction, and written
// back as a whole after every commit.
type Document struct {
	SchemaVersion int       `json:"schemaVersion"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Meta         Meta     `json:"meta"`
	Users        []User   `json:"users"`
	ActiveUserID string   `json:"activeUserId"`
	Features     Features `json:"features"`

	Animals            map[string]Animal         `json:"animals"`
	SheepDetails       map[string]SheepDetail    `json:"sheepDetails"`
	Fields             map[string]Field          `json:"fields"`
	FieldPlans         map[string]FieldPlan      `json:"fieldPlans"`
	FertilizerPlans    map[string]FertilizerPlan `json:"fertilizerPlan"`
	FertilizerLog      []FertilizerEntry         `json:"fertilizerLog"`
	PlantProtectionLog []PlantProtectionEntry    `json:"plantProtectionLog"`
	WorkLogs           []WorkLog                 `json:"workLogs"`

	Events []Event `json:"events"`
	Trash  Trash   `json:"trash"`
}

// UserByID returns the user with the given id.
func (d *Document) UserByID(id string) (User, bool) {
	for _, u := range d.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// ActiveUser returns the user referenced by ActiveUserID.
func (d *Document) ActiveUser() (User, bool) {
	return d.UserByID(d.ActiveUserID)
}
