package routine

import (
	"sort"

	"github.com/themobileprof/momvitals-be/internal/risk"
)

// Premium routine slugs
const (
	SlugMedicationReminder = "medication-reminder"
	SlugLabReports         = "lab-reports-analysis"
	SlugLifestyleCoaching  = "lifestyle-coaching"
)

// PremiumFeature is the subscription feature key that unlocks premium routines
const PremiumFeature = "premium_routines"

// Item is one timed step in a routine
type Item struct {
	Time string `json:"time"`
	Task string `json:"task"`
	Tip  string `json:"tip,omitempty"`
}

// Routine is a named daily guide
type Routine struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Premium     bool   `json:"premium"`
	Items       []Item `json:"items"`
	order       int
}

// Summary is a routine without its items, for listings and locked entries
type Summary struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Premium     bool   `json:"premium"`
	Recommended bool   `json:"recommended"`
}

// Catalog holds the known routines keyed by slug
type Catalog struct {
	routines map[string]Routine
}

// NewCatalog creates the built-in routine catalog
func NewCatalog() *Catalog {
	c := &Catalog{routines: make(map[string]Routine)}
	for i, r := range builtin() {
		r.order = i
		c.routines[r.Slug] = r
	}
	return c
}

// Get returns a routine by slug
func (c *Catalog) Get(slug string) (Routine, bool) {
	r, ok := c.routines[slug]
	if !ok {
		return Routine{}, false
	}
	r.Items = append([]Item(nil), r.Items...)
	return r, true
}

// List returns summaries in display order, flagging those recommended by the assessment
func (c *Catalog) List(a *risk.Assessment) []Summary {
	recommended := make(map[string]bool)
	if a != nil {
		for _, slug := range a.RecommendedRoutines {
			recommended[slug] = true
		}
	}

	all := make([]Routine, 0, len(c.routines))
	for _, r := range c.routines {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].order < all[j].order })

	out := make([]Summary, 0, len(all))
	for _, r := range all {
		out = append(out, Summary{
			Slug:        r.Slug,
			Title:       r.Title,
			Description: r.Description,
			Premium:     r.Premium,
			Recommended: recommended[r.Slug],
		})
	}
	return out
}

// Recommend returns the full routines that match the assessment's tiers
func (c *Catalog) Recommend(a risk.Assessment) []Routine {
	out := make([]Routine, 0, len(a.RecommendedRoutines))
	for _, slug := range a.RecommendedRoutines {
		if r, ok := c.Get(slug); ok {
			out = append(out, r)
		}
	}
	return out
}

func builtin() []Routine {
	return []Routine{
		{
			Slug:        risk.RoutineDiabetesPrevention,
			Title:       "Diabetes Prevention",
			Description: "Monitor blood sugar levels and follow recommended guidelines.",
			Items: []Item{
				{Time: "07:00 AM", Task: "Warm water & Fenugreek seeds", Tip: "Helps stabilize sugar levels."},
				{Time: "08:30 AM", Task: "High-Fiber Breakfast", Tip: "Oatmeal or Moong Dal Chilla."},
				{Time: "11:00 AM", Task: "Mid-day Snack", Tip: "One Apple or 10-12 Almonds."},
				{Time: "01:30 PM", Task: "Balanced Lunch", Tip: "Include Curd and green vegetables."},
				{Time: "05:00 PM", Task: "Physical Activity", Tip: "30-min brisk walk or light yoga."},
				{Time: "08:00 PM", Task: "Early Light Dinner", Tip: "Maintain 2 hours gap before sleep."},
			},
		},
		{
			Slug:        risk.RoutineHeartHealth,
			Title:       "Heart Health",
			Description: "Keep blood pressure in check with exercise and stress management.",
			Items: []Item{
				{Time: "06:30 AM", Task: "Yoga & Pranayam", Tip: "Reduces Blood Pressure stress."},
				{Time: "09:00 AM", Task: "Low Sodium Breakfast", Tip: "Essential for BP management."},
				{Time: "06:00 PM", Task: "30-min Brisk Walk", Tip: "Improves heart circulation."},
			},
		},
		{
			Slug:        risk.RoutineWeightGain,
			Title:       "Weight Management",
			Description: "Reach a healthy BMI through calorie-dense, balanced nutrition.",
			Items: []Item{
				{Time: "08:00 AM", Task: "Calorie Dense Smoothie", Tip: "Banana, Oats, and Nuts."},
				{Time: "02:00 PM", Task: "Complex Carb Meal", Tip: "Brown rice with Paneer/Chicken."},
				{Time: "09:00 PM", Task: "Bedtime Protein", Tip: "Aids muscle growth."},
			},
		},
		{
			Slug:        risk.RoutineWeightLoss,
			Title:       "Weight Management",
			Description: "Maintain a healthy BMI through balanced nutrition.",
			Items: []Item{
				{Time: "07:00 AM", Task: "Light Morning Walk", Tip: "Gentle activity that is safe in pregnancy."},
				{Time: "01:00 PM", Task: "Protein & Fiber Lunch", Tip: "Maintains satiety."},
				{Time: "07:30 PM", Task: "Early Dinner", Tip: "Boosts metabolic rest."},
			},
		},
		{
			Slug:        SlugMedicationReminder,
			Title:       "Medication Reminder",
			Description: "Stay on track with smart reminders.",
			Premium:     true,
			Items: []Item{
				{Time: "Daily", Task: "Take medication as per your schedule"},
				{Time: "06:00 AM", Task: "Default Morning Dose"},
			},
		},
		{
			Slug:        SlugLabReports,
			Title:       "Lab Reports Analysis",
			Description: "AI-powered analysis of your reports.",
			Premium:     true,
			Items: []Item{
				{Time: "Quarterly", Task: "Check HbA1c levels"},
				{Time: "Monthly", Task: "Review Lipid Profile"},
			},
		},
		{
			Slug:        SlugLifestyleCoaching,
			Title:       "Lifestyle Coaching",
			Description: "Personalized coaching with experts.",
			Premium:     true,
			Items: []Item{
				{Time: "Weekly", Task: "Stress management session"},
				{Time: "Daily", Task: "10-minute meditation"},
			},
		},
	}
}
