package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/n0thing2c/VNGO/internal/models"
)

// Proveedor externo de hoteles (booking.com vía RapidAPI). Las sugerencias
// son best-effort: cualquier falla del proveedor degrada a lista vacía, el
// plan de viaje nunca se cae por hoteles.
const (
	hotelAPIHost         = "booking-com15.p.rapidapi.com"
	hotelSearchTimeout   = 15 * time.Second
	hotelLocationTimeout = 10 * time.Second
	maxHotelResults      = 5
	searchRadiusKm       = 10

	// porción del presupuesto total que asumimos para alojamiento
	accommodationBudgetShare = 0.35
)

// centros aproximados de las ciudades turísticas principales, para cuando
// los tours no traen coordenadas
var provinceCenters = map[string][2]float64{
	"hanoi":       {21.0285, 105.8542},
	"ha noi":      {21.0285, 105.8542},
	"ho chi minh": {10.8231, 106.6297},
	"saigon":      {10.8231, 106.6297},
	"da nang":     {16.0544, 108.2022},
	"danang":      {16.0544, 108.2022},
	"hoi an":      {15.8801, 108.3380},
	"hue":         {16.4637, 107.5909},
	"nha trang":   {12.2388, 109.1967},
	"da lat":      {11.9404, 108.4583},
	"dalat":       {11.9404, 108.4583},
	"phu quoc":    {10.2899, 103.9840},
	"sapa":        {22.3364, 103.8438},
	"sa pa":       {22.3364, 103.8438},
	"ha long":     {20.9101, 107.1839},
	"halong":      {20.9101, 107.1839},
	"quang ninh":  {20.9101, 107.1839},
	"can tho":     {10.0452, 105.7469},
	"vung tau":    {10.3460, 107.0843},
	"ninh binh":   {20.2506, 105.9745},
	"quy nhon":    {13.7830, 109.2196},
	"phan thiet":  {10.9289, 108.1021},
	"mui ne":      {10.9330, 108.2870},
}

// HotelService busca y rankea hoteles cerca de los tours del plan.
type HotelService struct {
	apiKey  string
	baseURL string // override en tests
	client  *http.Client
}

func NewHotelService(apiKey string) *HotelService {
	return &HotelService{
		apiKey:  apiKey,
		baseURL: "https://" + hotelAPIHost,
		client:  &http.Client{Timeout: hotelSearchTimeout},
	}
}

// HotelsForTrip sugiere hoteles para un plan ya generado: centra la búsqueda
// en el centroide de los lugares de los tours (o el centro conocido de la
// provincia como fallback) y reparte el 35% del presupuesto entre las noches.
// Nunca devuelve error: sin proveedor o con fallas devuelve lista vacía.
func (s *HotelService) HotelsForTrip(ctx context.Context, plan *models.TripPlan) []models.Hotel {
	if s == nil || s.apiKey == "" {
		return []models.Hotel{}
	}

	lat, lon := s.tripCenter(plan)

	nights := plan.NumDays - 1
	if nights < 1 {
		nights = 1
	}
	budgetPerNight := int(float64(plan.Budget) * accommodationBudgetShare / float64(nights))
	stay := stayRange{numPeople: plan.NumPeople, nights: nights, checkin: planCheckin(plan)}

	hotels, err := s.SearchByCoordinates(ctx, lat, lon, stay)
	if err != nil {
		log.Printf("[hotels] ❌ búsqueda por coordenadas falló: %v", err)
		hotels = nil
	}

	// sin resultados alrededor del punto: reintento por nombre de ciudad
	if len(hotels) == 0 && plan.Province != "" {
		hotels, err = s.SearchByCity(ctx, plan.Province, stay)
		if err != nil {
			log.Printf("[hotels] ❌ búsqueda por ciudad falló: %v", err)
			return []models.Hotel{}
		}
	}

	scoreHotels(hotels, budgetPerNight)
	sort.SliceStable(hotels, func(i, j int) bool { return hotels[i].MatchScore > hotels[j].MatchScore })
	if len(hotels) > maxHotelResults {
		hotels = hotels[:maxHotelResults]
	}
	return hotels
}

// tripCenter: centroide de los places con coordenadas; si ninguno las trae,
// cae a la tabla de centros conocidos y en última instancia a Ho Chi Minh.
func (s *HotelService) tripCenter(plan *models.TripPlan) (lat, lon float64) {
	var sumLat, sumLon float64
	n := 0
	for _, day := range plan.Days {
		for _, tour := range day.Tours {
			for _, place := range tour.Places {
				if place.Lat != 0 || place.Lon != 0 {
					sumLat += place.Lat
					sumLon += place.Lon
					n++
				}
			}
		}
	}
	if n > 0 {
		return sumLat / float64(n), sumLon / float64(n)
	}

	key := strings.ToLower(strings.TrimSpace(plan.Province))
	if center, found := provinceCenters[key]; found {
		return center[0], center[1]
	}
	for name, center := range provinceCenters {
		if strings.Contains(key, name) {
			return center[0], center[1]
		}
	}

	log.Printf("[hotels] ⚠️ provincia %q sin coordenadas conocidas, usando Ho Chi Minh", plan.Province)
	hcm := provinceCenters["ho chi minh"]
	return hcm[0], hcm[1]
}

// stayRange son las fechas y tamaño de grupo de la búsqueda de hoteles.
type stayRange struct {
	numPeople int
	nights    int
	checkin   time.Time
}

// planCheckin: la fecha del día 1 si el plan la trae, si no una semana a
// futuro (el proveedor exige fechas concretas).
func planCheckin(plan *models.TripPlan) time.Time {
	if len(plan.Days) > 0 && plan.Days[0].Date != "" {
		if d, err := time.Parse("2006-01-02", plan.Days[0].Date); err == nil {
			return d
		}
	}
	return time.Now().AddDate(0, 0, 7)
}

func (r stayRange) apply(q url.Values) {
	nights := max(r.nights, 1)
	checkin := r.checkin
	if checkin.IsZero() {
		checkin = time.Now().AddDate(0, 0, 7)
	}
	q.Set("arrival_date", checkin.Format("2006-01-02"))
	q.Set("departure_date", checkin.AddDate(0, 0, nights).Format("2006-01-02"))
	q.Set("adults", strconv.Itoa(max(r.numPeople, 1)))
	q.Set("currency_code", "VND")
	q.Set("page_number", "1")
}

// SearchByCoordinates busca hoteles alrededor de un punto.
func (s *HotelService) SearchByCoordinates(ctx context.Context, lat, lon float64, stay stayRange) ([]models.Hotel, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.6f", lat))
	q.Set("longitude", fmt.Sprintf("%.6f", lon))
	q.Set("radius", strconv.Itoa(searchRadiusKm))
	q.Set("order_by", "distance")
	stay.apply(q)

	ctx, cancel := context.WithTimeout(ctx, hotelSearchTimeout)
	defer cancel()

	body, err := s.get(ctx, "/api/v1/hotels/searchHotelsByCoordinates", q)
	if err != nil {
		return nil, err
	}
	return s.parseSearchResponse(body, lat, lon)
}

// SearchByCity resuelve primero la ciudad a un dest_id y busca por destino.
// No vuelve a las coordenadas: es el fallback para cuando la búsqueda
// geográfica no trajo nada.
func (s *HotelService) SearchByCity(ctx context.Context, city string, stay stayRange) ([]models.Hotel, error) {
	dest, err := s.lookupDestination(ctx, city)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("dest_id", dest.ID)
	q.Set("search_type", "CITY")
	stay.apply(q)

	ctx, cancel := context.WithTimeout(ctx, hotelSearchTimeout)
	defer cancel()

	body, err := s.get(ctx, "/api/v1/hotels/searchHotels", q)
	if err != nil {
		return nil, err
	}
	return s.parseSearchResponse(body, dest.Latitude, dest.Longitude)
}

type destination struct {
	ID        string  `json:"dest_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (s *HotelService) lookupDestination(ctx context.Context, query string) (*destination, error) {
	q := url.Values{}
	q.Set("query", query)

	ctx, cancel := context.WithTimeout(ctx, hotelLocationTimeout)
	defer cancel()

	body, err := s.get(ctx, "/api/v1/hotels/searchDestination", q)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []destination `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decodificando destino: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("destino %q no encontrado", query)
	}
	return &resp.Data[0], nil
}

func (s *HotelService) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-RapidAPI-Key", s.apiKey)
	req.Header.Set("X-RapidAPI-Host", hotelAPIHost)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("proveedor de hoteles devolvió %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// hotelSearchResponse cubre los campos que nos importan del payload de
// booking.com (ignora el resto).
type hotelSearchResponse struct {
	Data struct {
		Hotels []struct {
			HotelID  json.Number `json:"hotel_id"`
			Property struct {
				Name           string   `json:"name"`
				Latitude       float64  `json:"latitude"`
				Longitude      float64  `json:"longitude"`
				ReviewScore    float64  `json:"reviewScore"` // escala 0-10
				ReviewCount    int      `json:"reviewCount"`
				PropertyClass  float64  `json:"propertyClass"`
				PhotoUrls      []string `json:"photoUrls"`
				WishlistName   string   `json:"wishlistName"`
				PriceBreakdown struct {
					GrossPrice struct {
						Value    float64 `json:"value"`
						Currency string  `json:"currency"`
					} `json:"grossPrice"`
				} `json:"priceBreakdown"`
			} `json:"property"`
			AccessibilityLabel string `json:"accessibilityLabel"`
		} `json:"hotels"`
	} `json:"data"`
}

func (s *HotelService) parseSearchResponse(body []byte, centerLat, centerLon float64) ([]models.Hotel, error) {
	var resp hotelSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decodificando hoteles: %w", err)
	}

	hotels := make([]models.Hotel, 0, len(resp.Data.Hotels))
	for _, h := range resp.Data.Hotels {
		p := h.Property
		if p.Name == "" {
			continue
		}

		hotel := models.Hotel{
			ExternalID:    h.HotelID.String(),
			Name:          p.Name,
			Latitude:      p.Latitude,
			Longitude:     p.Longitude,
			PricePerNight: int(p.PriceBreakdown.GrossPrice.Value),
			Currency:      p.PriceBreakdown.GrossPrice.Currency,
			Rating:        p.ReviewScore / 2, // 0-10 → 0-5
			ReviewCount:   p.ReviewCount,
			StarRating:    p.PropertyClass,
			District:      p.WishlistName,
			Source:        "booking.com",
		}
		if len(p.PhotoUrls) > 0 {
			hotel.ThumbnailURL = p.PhotoUrls[0]
		}
		if d := parseDistance(h.AccessibilityLabel); d > 0 {
			hotel.DistanceToCenter = d
		} else if p.Latitude != 0 || p.Longitude != 0 {
			hotel.DistanceToCenter = round2(haversineKm(centerLat, centerLon, p.Latitude, p.Longitude))
		}
		hotel.DistanceToTours = hotel.DistanceToCenter
		hotel.BookingURL = bookingLink(hotel.ExternalID)
		hotel.BookingLinks = affiliateLinks(hotel)

		hotels = append(hotels, hotel)
	}
	return hotels, nil
}

// parseDistance extrae "X km from centre" del label de accesibilidad.
func parseDistance(label string) float64 {
	idx := strings.Index(strings.ToLower(label), " km from")
	if idx == -1 {
		return 0
	}
	head := label[:idx]
	if j := strings.LastIndexAny(head, " \n"); j != -1 {
		head = head[j+1:]
	}
	head = strings.ReplaceAll(head, ",", ".")
	d, err := strconv.ParseFloat(head, 64)
	if err != nil {
		return 0
	}
	return d
}

// scoreHotels aplica el score de matching (0-100):
//   rating ≤40 lineal, precio ≤30 por tramos, distancia ≤20 por tramos,
//   volumen de reseñas ≤10.
func scoreHotels(hotels []models.Hotel, budgetPerNight int) {
	for i := range hotels {
		h := &hotels[i]
		score := 0.0

		// rating 0-5 → 0-40
		score += h.Rating / 5.0 * 40

		// precio contra el presupuesto por noche
		if budgetPerNight > 0 && h.PricePerNight > 0 {
			ratio := float64(h.PricePerNight) / float64(budgetPerNight)
			switch {
			case ratio <= 0.7:
				score += 30
			case ratio <= 1.0:
				score += 25
			case ratio <= 1.2:
				score += 15
			default:
				score += 5
			}
		} else {
			score += 15
		}

		// cercanía al centro del viaje
		switch d := h.DistanceToTours; {
		case d == 0:
			score += 10 // sin dato: neutro
		case d <= 1:
			score += 20
		case d <= 2:
			score += 17
		case d <= 3:
			score += 14
		case d <= 5:
			score += 10
		case d <= 10:
			score += 5
		default:
			score += 2
		}

		// confianza por volumen de reseñas
		switch {
		case h.ReviewCount >= 1000:
			score += 10
		case h.ReviewCount >= 500:
			score += 8
		case h.ReviewCount >= 100:
			score += 5
		case h.ReviewCount > 0:
			score += 2
		}

		h.MatchScore = round2(score)
	}
}

// haversineKm: distancia sobre la esfera terrestre.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func bookingLink(externalID string) string {
	if externalID == "" {
		return ""
	}
	return "https://www.booking.com/hotel/vn/" + externalID + ".html"
}

// affiliateLinks arma deep links de búsqueda en los agregadores principales.
func affiliateLinks(h models.Hotel) map[string]string {
	name := url.QueryEscape(h.Name)
	links := map[string]string{
		"agoda":       "https://www.agoda.com/search?q=" + name,
		"tripadvisor": "https://www.tripadvisor.com/Search?q=" + name,
	}
	if h.BookingURL != "" {
		links["booking"] = h.BookingURL
	}
	return links
}
