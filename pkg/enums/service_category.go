package enums

import "fmt"

// ServiceCategory classifies a published service listing.
type ServiceCategory string

const (
	ServiceCategoryWebDevelopment   ServiceCategory = "Desarrollo Web"
	ServiceCategoryGraphicDesign    ServiceCategory = "Diseño Gráfico"
	ServiceCategoryDigitalMarketing ServiceCategory = "Marketing Digital"
	ServiceCategoryConsulting       ServiceCategory = "Consultoría"
	ServiceCategoryEducation        ServiceCategory = "Educación"
	ServiceCategoryOther            ServiceCategory = "Otros"
)

var validServiceCategories = []ServiceCategory{
	ServiceCategoryWebDevelopment,
	ServiceCategoryGraphicDesign,
	ServiceCategoryDigitalMarketing,
	ServiceCategoryConsulting,
	ServiceCategoryEducation,
	ServiceCategoryOther,
}

// ServiceCategories returns the full list of publishable categories.
func ServiceCategories() []ServiceCategory {
	out := make([]ServiceCategory, len(validServiceCategories))
	copy(out, validServiceCategories)
	return out
}

// String returns the literal string for the category.
func (c ServiceCategory) String() string {
	return string(c)
}

// IsValid reports whether the category is known.
func (c ServiceCategory) IsValid() bool {
	for _, candidate := range validServiceCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseServiceCategory converts raw input into a ServiceCategory.
func ParseServiceCategory(value string) (ServiceCategory, error) {
	for _, candidate := range validServiceCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service category %q", value)
}
