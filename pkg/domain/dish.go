// Package domain defines the dish record, its course vocabulary, the typed
// errors shared by every layer, and the key-value persistence contract.
package domain

import (
	"strings"
)

// Course identifies the menu section a dish belongs to.
type Course string

// Canonical courses. Filters and writes are normalized onto this set.
const (
	CourseEntree     Course = "Entrée"
	CourseAppetizers Course = "Appetizers"
	CourseMains      Course = "Mains"
	CourseSides      Course = "Sides"
	CourseDesserts   Course = "Desserts"
)

var courseOrder = []Course{CourseEntree, CourseAppetizers, CourseMains, CourseSides, CourseDesserts}

// courseAliases maps lower-cased spellings onto canonical courses. The picker
// historically offered "Dessert" while stored dishes used "Desserts".
var courseAliases = map[string]Course{
	"entrée":      CourseEntree,
	"entree":      CourseEntree,
	"appetizers":  CourseAppetizers,
	"appetizer":   CourseAppetizers,
	"starter":     CourseAppetizers,
	"starters":    CourseAppetizers,
	"mains":       CourseMains,
	"main":        CourseMains,
	"main course": CourseMains,
	"sides":       CourseSides,
	"side":        CourseSides,
	"desserts":    CourseDesserts,
	"dessert":     CourseDesserts,
}

// Courses returns the canonical courses in menu order.
func Courses() []Course {
	out := make([]Course, len(courseOrder))
	copy(out, courseOrder)
	return out
}

// ParseCourse normalizes raw input onto a canonical course.
func ParseCourse(raw string) (Course, bool) {
	c, ok := courseAliases[strings.ToLower(strings.TrimSpace(raw))]
	return c, ok
}

// Dish is a single menu item. Every attribute is persisted as a string.
type Dish struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Course      Course `json:"course"`
	Price       string `json:"price"`
}

// Fields carries the caller-editable attributes of a dish.
type Fields struct {
	Name        string
	Description string
	Course      string
	Price       string
}

// Normalize validates the fields and returns them trimmed with the course in
// canonical form. The returned error is always a ValidationError.
func (f Fields) Normalize() (Fields, error) {
	out := Fields{
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Course:      strings.TrimSpace(f.Course),
		Price:       strings.TrimSpace(f.Price),
	}
	for _, req := range []struct{ name, value string }{
		{"name", out.Name},
		{"description", out.Description},
		{"course", out.Course},
		{"price", out.Price},
	} {
		if req.value == "" {
			return Fields{}, ValidationError{Field: req.name, Reason: "is required"}
		}
	}
	course, ok := ParseCourse(out.Course)
	if !ok {
		return Fields{}, ValidationError{Field: "course", Reason: "unknown course " + out.Course}
	}
	out.Course = string(course)
	cents, err := ParsePriceCents(out.Price)
	if err != nil {
		return Fields{}, ValidationError{Field: "price", Reason: "must be a decimal amount"}
	}
	if cents < 0 {
		return Fields{}, ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if fractionDigits(out.Price) > 2 {
		return Fields{}, ValidationError{Field: "price", Reason: "must have at most two decimal places"}
	}
	return out, nil
}

// Apply returns d with its non-id attributes replaced by f. f is expected to be
// normalized already.
func (d Dish) Apply(f Fields) Dish {
	d.Name = f.Name
	d.Description = f.Description
	d.Course = Course(f.Course)
	d.Price = f.Price
	return d
}

// FilterByCourse returns the dishes whose course equals c, preserving order.
// An empty course returns a copy of the full list.
func FilterByCourse(dishes []Dish, c Course) []Dish {
	out := make([]Dish, 0, len(dishes))
	for _, d := range dishes {
		if c == "" || d.Course == c {
			out = append(out, d)
		}
	}
	return out
}

// IndexOf returns the position of the dish with id, or -1.
func IndexOf(dishes []Dish, id string) int {
	for i, d := range dishes {
		if d.ID == id {
			return i
		}
	}
	return -1
}
