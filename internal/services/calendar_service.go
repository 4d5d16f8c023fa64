package services

import (
	"fmt"
	"time"

	"github.com/kmehta/water-intake-tracker/internal/models"
)

// Creature is the visual companion attached to a calendar day.
type Creature struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// creatures is the fixed companion list; a date's companion is chosen by its
// day-of-year so the assignment is stable across renders and clients.
var creatures = []Creature{
	{Name: "Sprouting Seedling", Icon: "🌱"},
	{Name: "Growing Plant", Icon: "🌿"},
	{Name: "Mighty Tree", Icon: "🌳"},
	{Name: "Colorful Fish", Icon: "🐠"},
	{Name: "Happy Whale", Icon: "🐳"},
	{Name: "Sea Turtle", Icon: "🐢"},
	{Name: "Beautiful Butterfly", Icon: "🦋"},
	{Name: "Cherry Blossom", Icon: "🌸"},
	{Name: "Sunflower", Icon: "🌻"},
	{Name: "Hibiscus", Icon: "🌺"},
	{Name: "Lizard", Icon: "🦎"},
	{Name: "Happy Frog", Icon: "🐸"},
	{Name: "Duck", Icon: "🦆"},
	{Name: "Swan", Icon: "🦢"},
	{Name: "Octopus", Icon: "🐙"},
	{Name: "Shark", Icon: "🦈"},
	{Name: "Cactus", Icon: "🌵"},
	{Name: "Four Leaf Clover", Icon: "🍀"},
	{Name: "Palm Tree", Icon: "🌴"},
	{Name: "Rice Plant", Icon: "🌾"},
	{Name: "Flamingo", Icon: "🦩"},
	{Name: "Peacock", Icon: "🦚"},
	{Name: "Rose", Icon: "🌹"},
	{Name: "Wilted Flower", Icon: "🥀"},
	{Name: "Hedgehog", Icon: "🦔"},
	{Name: "Snail", Icon: "🐌"},
	{Name: "Gecko", Icon: "🦎"},
	{Name: "Crocodile", Icon: "🐊"},
	{Name: "Dinosaur", Icon: "🦕"},
	{Name: "Caterpillar", Icon: "🐛"},
	{Name: "Bee", Icon: "🐝"},
}

// DayCell is one rendered calendar day.
type DayCell struct {
	DayNumber int    `json:"day_number"`
	DateKey   string `json:"date_key"`
	IsToday   bool   `json:"is_today"`
	IsSelected bool  `json:"is_selected"`
	// IsFuture marks days strictly after the current date; they are rendered
	// but non-interactive.
	IsFuture  bool `json:"is_future"`
	HasRecord bool `json:"has_record"`
	// Percentage is the day's achievement, 0 when no record exists.
	Percentage int `json:"percentage"`
	// AchievementLevel is "none" for days without a record, otherwise the
	// same threshold bucket used by the statistics engine.
	AchievementLevel string   `json:"achievement_level"`
	Companion        Creature `json:"companion"`
}

// CalendarService renders month grids from a record set.
type CalendarService struct{}

// NewCalendarService creates a new instance of CalendarService.
func NewCalendarService() *CalendarService {
	return &CalendarService{}
}

// CreatureForDate picks the companion for a date by its 1-based day of year.
func CreatureForDate(t time.Time) Creature {
	return creatures[t.YearDay()%len(creatures)]
}

// RenderMonth produces a cell for each day 1..daysInMonth of the given month.
func (s *CalendarService) RenderMonth(year int, month time.Month, records []models.DailyRecord, selectedDate string, defaultGoal int, now time.Time) []DayCell {
	byDate := make(map[string]models.DailyRecord, len(records))
	for _, rec := range records {
		byDate[rec.Date] = rec
	}

	today := now.Format("2006-01-02")
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	cells := make([]DayCell, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		key := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)

		cell := DayCell{
			DayNumber:        day,
			DateKey:          key,
			IsToday:          key == today,
			IsSelected:       key == selectedDate,
			IsFuture:         key > today,
			AchievementLevel: "none",
			Companion:        CreatureForDate(date),
		}

		if rec, ok := byDate[key]; ok {
			cell.HasRecord = true
			cell.Percentage = rec.Percentage(defaultGoal)
			cell.AchievementLevel = bucketFor(cell.Percentage)
		}

		cells = append(cells, cell)
	}
	return cells
}
