package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/n0thing2c/VNGO/internal/ml"
	"github.com/n0thing2c/VNGO/internal/models"
)

// Restricciones default de una corrida de planificación.
const (
	DefaultMaxHoursPerDay = 10.0
	dayStartHour          = 8 // el día arranca 08:00
	breakHours            = 1.0
	maxToursPerDay        = 4
)

// TourCatalog es lo único que el planner necesita del layer de catálogo.
type TourCatalog interface {
	FetchByLocation(ctx context.Context, province string, placeIDs []int) ([]models.TourRecord, error)
	GetByID(ctx context.Context, tourID int) (*models.TourRecord, error)
}

// TripRequest son los parámetros de una corrida FETCH→SCORE→SCHEDULE.
type TripRequest struct {
	Province       string     `json:"province"`
	NumDays        int        `json:"num_days"`
	Budget         int        `json:"budget"`
	NumPeople      int        `json:"num_people"`
	PlaceIDs       []int      `json:"place_ids,omitempty"`
	PreferredTags  []string   `json:"preferred_tags,omitempty"`
	UserID         int        `json:"user_id,omitempty"`
	MaxHoursPerDay float64    `json:"max_hours_per_day,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`

	// vector de perfil ya construido (lo setea el layer de orquestación)
	ProfileVector []float64 `json:"-"`
}

func (r *TripRequest) normalize() {
	if r.NumDays < 1 {
		r.NumDays = 1
	}
	if r.NumPeople < 1 {
		r.NumPeople = 1
	}
	if r.MaxHoursPerDay <= 0 {
		r.MaxHoursPerDay = DefaultMaxHoursPerDay
	}
}

// ScoredTour es un candidato con su score compuesto (escala 0-100).
type ScoredTour struct {
	Tour    models.TourRecord `json:"tour"`
	Score   float64           `json:"score"`
	Reasons []string          `json:"reasons,omitempty"`
}

// TripPlanner genera planes multi-día con scheduling greedy.
type TripPlanner struct {
	catalog TourCatalog
}

func NewTripPlanner(catalog TourCatalog) *TripPlanner {
	return &TripPlanner{catalog: catalog}
}

// GenerateTripPlan corre el pipeline completo. Una región sin tours es un
// resultado normal (Success=false con razón), no un error.
func (p *TripPlanner) GenerateTripPlan(ctx context.Context, req TripRequest) (*models.TripPlan, error) {
	req.normalize()

	tours, err := p.catalog.FetchByLocation(ctx, req.Province, req.PlaceIDs)
	if err != nil {
		return nil, err
	}

	plan := &models.TripPlan{
		Province:      req.Province,
		NumDays:       req.NumDays,
		Budget:        req.Budget,
		NumPeople:     req.NumPeople,
		PreferredTags: req.PreferredTags,
		Days:          []models.TripDay{},
	}

	if len(tours) == 0 {
		plan.Success = false
		plan.Reason = "no tours available in this location"
		plan.BudgetRemaining = req.Budget
		return plan, nil
	}

	scored := ScoreTours(tours, req.Budget, req.NumDays, req.NumPeople,
		req.PreferredTags, req.ProfileVector != nil)

	plan.Days, _ = ScheduleDays(scored, req.NumDays, req.Budget, req.NumPeople, req.MaxHoursPerDay)
	plan.Success = true

	if req.StartDate != nil {
		for i := range plan.Days {
			plan.Days[i].Date = req.StartDate.AddDate(0, 0, i).Format("2006-01-02")
		}
	}

	RecalculateTotals(plan)
	return plan, nil
}

// ====== SCORE ======

// ScoreTours puntúa cada candidato (0-100, aditivo) y los devuelve
// ordenados de mayor a menor:
//   rating bayesiano ≤30, ajuste al presupuesto ≤25, tags ≤20,
//   duración ≤15, personalización +5 plana.
func ScoreTours(
	tours []models.TourRecord,
	budget, numDays, numPeople int,
	preferredTags []string,
	personalized bool,
) []ScoredTour {

	if numDays < 1 {
		numDays = 1
	}
	if numPeople < 1 {
		numPeople = 1
	}
	budgetPerPersonPerDay := float64(budget) / float64(numDays) / float64(numPeople)

	scored := make([]ScoredTour, 0, len(tours))
	for i := range tours {
		tour := tours[i]
		score := 0.0
		var reasons []string

		// 1) rating bayesiano (0-30)
		if tour.RatingCount > 0 {
			bayes := ml.BayesianRating(tour.AverageRating(), tour.RatingCount)
			score += (bayes / 5.0) * 30
			if bayes >= 4.0 {
				reasons = append(reasons, fmt.Sprintf("Highly rated (%.1f★)", bayes))
			}
		}

		// 2) ajuste al presupuesto (0-25); los tours caros se penalizan
		// suavemente, no se excluyen
		price := float64(tour.Price)
		if price > 0 && budgetPerPersonPerDay > 0 {
			ratio := price / budgetPerPersonPerDay
			switch {
			case ratio <= 0.5:
				score += 25
				reasons = append(reasons, "Great value for budget")
			case ratio <= 0.8:
				score += 20
			case ratio <= 1.0:
				score += 15
			default:
				score += math.Max(0, 15-(ratio-1)*10)
			}
		}

		// 3) match de tags preferidos (0-20)
		if len(preferredTags) > 0 {
			var matched []string
			for _, tag := range preferredTags {
				if tour.Tags.Contains(tag) {
					matched = append(matched, tag)
				}
			}
			if len(matched) > 0 {
				score += float64(len(matched)) / float64(len(preferredTags)) * 20
				if len(matched) > 2 {
					matched = matched[:2]
				}
				reasons = append(reasons, "Matches: "+strings.Join(matched, ", "))
			}
		}

		// 4) ajuste de duración (0-15): 2-4h es lo ideal para un día
		d := tour.Duration
		switch {
		case d >= 2 && d <= 4:
			score += 15
		case d < 2:
			score += 10
		case d <= 6:
			score += 12
		default:
			score += 8
		}

		// 5) personalización: +5 plano si hay perfil (placeholder grueso,
		// no similitud completa; ver RecommendByCriteria para la versión
		// ponderada)
		if personalized {
			score += 5
		}

		scored = append(scored, ScoredTour{
			Tour:    tour,
			Score:   round2(score),
			Reasons: reasons,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// ====== SCHEDULE ======

type dayConstraints struct {
	dayNumber       int
	daysLeft        int
	remainingBudget int
	numPeople       int
	maxHours        float64
}

// ScheduleDays pliega scheduleDay sobre los días: cada tour agendado sale
// del pool, así el invariante "sin duplicados entre días" vale por
// construcción.
func ScheduleDays(
	scored []ScoredTour,
	numDays, budget, numPeople int,
	maxHours float64,
) ([]models.TripDay, []ScoredTour) {

	days := make([]models.TripDay, 0, numDays)
	remaining := scored
	remainingBudget := budget

	for dayNum := 1; dayNum <= numDays; dayNum++ {
		var day models.TripDay
		day, remaining = scheduleDay(remaining, dayConstraints{
			dayNumber:       dayNum,
			daysLeft:        numDays - dayNum + 1,
			remainingBudget: remainingBudget,
			numPeople:       numPeople,
			maxHours:        maxHours,
		})
		remainingBudget -= day.TotalCost
		days = append(days, day)
	}

	return days, remaining
}

// scheduleDay es puro: greedy sobre los candidatos con bonus de variedad
// (0.5 por tag todavía no visto en el día), devolviendo el día armado y el
// pool restante. Admisión:
//   (a) horas del día + duración ≤ maxHours,
//   (b) costo ≤ el MÁS ESTRICTO entre presupuesto restante y 1.2× la
//       porción proporcional de los días que quedan,
//   (c) numPeople dentro de [min_people, max_people].
// Tope de 4 tours por día.
func scheduleDay(candidates []ScoredTour, c dayConstraints) (models.TripDay, []ScoredTour) {
	day := models.TripDay{
		DayNumber: c.dayNumber,
		Tours:     []models.ScheduledTour{},
	}

	var dayHours float64
	dayCost := 0
	dayTags := make(map[string]bool)
	used := make(map[int]bool) // índices ya agendados

	// porción proporcional con 20% de margen, siempre acotada por el
	// presupuesto restante total
	allowance := float64(c.remainingBudget) / float64(c.daysLeft) * 1.2
	if allowance > float64(c.remainingBudget) {
		allowance = float64(c.remainingBudget)
	}

	for len(day.Tours) < maxToursPerDay {
		bestIdx := -1
		bestEff := 0.0

		for i := range candidates {
			if used[i] {
				continue
			}
			tour := &candidates[i].Tour
			cost := tour.Price * c.numPeople

			if dayHours+tour.Duration > c.maxHours {
				continue
			}
			if float64(dayCost+cost) > allowance {
				continue
			}
			if c.numPeople < tour.MinPeople {
				continue
			}
			if tour.MaxPeople > 0 && c.numPeople > tour.MaxPeople {
				continue
			}

			newTags := 0
			for _, tag := range tour.Tags {
				if !dayTags[tag] {
					newTags++
				}
			}
			eff := candidates[i].Score + 0.5*float64(newTags)

			if bestIdx == -1 || eff > bestEff {
				bestIdx = i
				bestEff = eff
			}
		}

		if bestIdx == -1 {
			break
		}

		cand := candidates[bestIdx]
		day.Tours = append(day.Tours, models.ScheduledTour{
			TourSummary:        cand.Tour.Summary(),
			Places:             cand.Tour.Places,
			Order:              len(day.Tours) + 1,
			SuggestedStartTime: startTimeAfter(dayHours),
			Score:              cand.Score,
			EffectiveScore:     round2(bestEff),
			Reasons:            cand.Reasons,
		})

		dayHours += cand.Tour.Duration + breakHours
		dayCost += cand.Tour.Price * c.numPeople
		for _, tag := range cand.Tour.Tags {
			dayTags[tag] = true
		}
		used[bestIdx] = true
	}

	if len(day.Tours) > 0 {
		day.TotalDuration = dayHours - breakHours
	}
	day.TotalCost = dayCost

	remaining := make([]ScoredTour, 0, len(candidates)-len(used))
	for i := range candidates {
		if !used[i] {
			remaining = append(remaining, candidates[i])
		}
	}
	return day, remaining
}

// startTimeAfter: horario sugerido acumulando desde las 08:00.
func startTimeAfter(hoursElapsed float64) string {
	totalMinutes := dayStartHour*60 + int(hoursElapsed*60)
	return fmt.Sprintf("%02d:%02d", (totalMinutes/60)%24, totalMinutes%60)
}

// ====== Mutaciones sobre un plan ya generado ======

// planContains: el tour ya está agendado en algún día del plan.
func planContains(plan *models.TripPlan, tourID int) bool {
	for _, day := range plan.Days {
		for _, t := range day.Tours {
			if t.ID == tourID {
				return true
			}
		}
	}
	return false
}

// AddTour agrega un tour a un día; si el día no existe o el tour ya está en
// el plan, no hace nada (idempotente).
func (p *TripPlanner) AddTour(ctx context.Context, plan *models.TripPlan, dayNumber, tourID int) (*models.TripPlan, error) {
	dayIdx := dayNumber - 1
	if dayIdx < 0 || dayIdx >= len(plan.Days) {
		return plan, nil
	}
	if planContains(plan, tourID) {
		return plan, nil
	}

	tour, err := p.catalog.GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return plan, nil
	}

	day := &plan.Days[dayIdx]
	var hoursElapsed float64
	for _, t := range day.Tours {
		hoursElapsed += t.Duration + breakHours
	}

	day.Tours = append(day.Tours, models.ScheduledTour{
		TourSummary:        tour.Summary(),
		Places:             tour.Places,
		Order:              len(day.Tours) + 1,
		SuggestedStartTime: startTimeAfter(hoursElapsed),
		UserAdded:          true,
	})

	RecalculateTotals(plan)
	return plan, nil
}

// RemoveTour saca un tour de un día y reordena; ids inexistentes son no-op.
func (p *TripPlanner) RemoveTour(plan *models.TripPlan, dayNumber, tourID int) *models.TripPlan {
	dayIdx := dayNumber - 1
	if dayIdx < 0 || dayIdx >= len(plan.Days) {
		return plan
	}

	day := &plan.Days[dayIdx]
	kept := day.Tours[:0]
	for _, t := range day.Tours {
		if t.ID != tourID {
			kept = append(kept, t)
		}
	}
	day.Tours = kept
	for i := range day.Tours {
		day.Tours[i].Order = i + 1
	}

	RecalculateTotals(plan)
	return plan
}

// SwapTour reemplaza un tour por otro manteniendo orden y horario.
func (p *TripPlanner) SwapTour(ctx context.Context, plan *models.TripPlan, dayNumber, oldTourID, newTourID int) (*models.TripPlan, error) {
	dayIdx := dayNumber - 1
	if dayIdx < 0 || dayIdx >= len(plan.Days) {
		return plan, nil
	}

	day := &plan.Days[dayIdx]
	oldIdx := -1
	for i, t := range day.Tours {
		if t.ID == oldTourID {
			oldIdx = i
			break
		}
	}
	if oldIdx == -1 {
		return plan, nil
	}

	tour, err := p.catalog.GetByID(ctx, newTourID)
	if err != nil {
		return nil, err
	}
	if tour == nil {
		return plan, nil
	}

	old := day.Tours[oldIdx]
	day.Tours[oldIdx] = models.ScheduledTour{
		TourSummary:        tour.Summary(),
		Places:             tour.Places,
		Order:              old.Order,
		SuggestedStartTime: old.SuggestedStartTime,
		UserAdded:          true,
	}

	RecalculateTotals(plan)
	return plan, nil
}

// Alternatives sugiere reemplazos para un día: tours no usados en el plan
// que entran en las horas que le quedan al día.
func (p *TripPlanner) Alternatives(
	ctx context.Context,
	plan *models.TripPlan,
	dayNumber int,
	excludeIDs []int,
	limit int,
) ([]ScoredTour, error) {

	dayIdx := dayNumber - 1
	if dayIdx < 0 || dayIdx >= len(plan.Days) {
		return []ScoredTour{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	exclude := make(map[int]bool)
	for _, id := range excludeIDs {
		exclude[id] = true
	}
	for _, d := range plan.Days {
		for _, t := range d.Tours {
			exclude[t.ID] = true
		}
	}

	tours, err := p.catalog.FetchByLocation(ctx, plan.Province, nil)
	if err != nil {
		return nil, err
	}

	maxAdditional := DefaultMaxHoursPerDay - plan.Days[dayIdx].TotalDuration
	var candidates []models.TourRecord
	for _, t := range tours {
		if exclude[t.ID] || t.Duration > maxAdditional+2 {
			continue
		}
		candidates = append(candidates, t)
	}

	scored := ScoreTours(candidates, plan.BudgetRemaining, 1, plan.NumPeople, plan.PreferredTags, false)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// RecalculateTotals re-agrega costos y duraciones de todo el plan; las
// mutaciones deben llamarlo siempre.
func RecalculateTotals(plan *models.TripPlan) {
	numPeople := plan.NumPeople
	if numPeople < 1 {
		numPeople = 1
	}

	totalCost := 0
	var totalDuration float64
	toursIncluded := 0

	for i := range plan.Days {
		day := &plan.Days[i]
		dayCost := 0
		var dayDuration float64
		for _, t := range day.Tours {
			dayCost += t.Price * numPeople
			dayDuration += t.Duration
		}
		day.TotalCost = dayCost
		if len(day.Tours) > 0 {
			// duraciones más los breaks entre tours
			day.TotalDuration = dayDuration + float64(len(day.Tours)-1)*breakHours
		} else {
			day.TotalDuration = 0
		}
		totalCost += dayCost
		totalDuration += day.TotalDuration
		toursIncluded += len(day.Tours)
	}

	plan.TotalCost = totalCost
	plan.TotalDuration = totalDuration
	plan.BudgetRemaining = plan.Budget - totalCost
	plan.ToursIncluded = toursIncluded
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
