package models

import "time"

// ScheduledTour es un tour ya asignado a un día del plan.
type ScheduledTour struct {
	TourSummary        `bson:",inline"`
	Places             []Place  `json:"places" bson:"places"`
	Order              int      `json:"order" bson:"order"`
	SuggestedStartTime string   `json:"suggested_start_time" bson:"suggestedStartTime"`
	Score              float64  `json:"score" bson:"score"`
	EffectiveScore     float64  `json:"effective_score" bson:"effectiveScore"`
	Reasons            []string `json:"reasons,omitempty" bson:"reasons,omitempty"`
	UserAdded          bool     `json:"is_user_added,omitempty" bson:"isUserAdded,omitempty"`
}

type TripDay struct {
	DayNumber     int             `json:"day_number" bson:"dayNumber"`
	Date          string          `json:"date,omitempty" bson:"date,omitempty"`
	Tours         []ScheduledTour `json:"tours" bson:"tours"`
	TotalDuration float64         `json:"total_duration" bson:"totalDuration"`
	TotalCost     int             `json:"total_cost" bson:"totalCost"`
}

// TripPlan es el resultado completo de una corrida de planificación.
// Success=false con Reason es un resultado normal (región sin tours),
// no un error.
type TripPlan struct {
	Success         bool      `json:"success" bson:"success"`
	Reason          string    `json:"reason,omitempty" bson:"reason,omitempty"`
	Province        string    `json:"province" bson:"province"`
	NumDays         int       `json:"num_days" bson:"numDays"`
	Budget          int       `json:"budget" bson:"budget"`
	NumPeople       int       `json:"num_people" bson:"numPeople"`
	PreferredTags   []string  `json:"preferred_tags,omitempty" bson:"preferredTags,omitempty"`
	Days            []TripDay `json:"days" bson:"days"`
	TotalCost       int       `json:"total_cost" bson:"totalCost"`
	TotalDuration   float64   `json:"total_duration" bson:"totalDuration"`
	BudgetRemaining int       `json:"budget_remaining" bson:"budgetRemaining"`
	ToursIncluded   int       `json:"tours_included" bson:"toursIncluded"`
	Hotels          []Hotel   `json:"hotels,omitempty" bson:"hotels,omitempty"`
}

// TripPlanDoc envuelve el plan para el historial en Mongo.
type TripPlanDoc struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    int       `bson:"userId" json:"user_id"`
	Plan      TripPlan  `bson:"plan" json:"plan"`
	CreatedAt time.Time `bson:"createdAt" json:"created_at"`
}
