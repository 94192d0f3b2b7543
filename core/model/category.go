package model

import (
	"fmt"
	"strings"
)

// Category labels the technology of a generation unit. Only CategorySolar
// changes dispatch behaviour; the other values are descriptive.
type Category string

const (
	CategoryCoal    Category = "THERMAL_COAL"
	CategoryGas     Category = "THERMAL_GAS"
	CategorySolar   Category = "SOLAR"
	CategoryHydro   Category = "HYDRO"
	CategoryWind    Category = "WIND"
	CategoryNuclear Category = "NUCLEAR"
)

var categoryAliases = map[string]Category{
	"THERMAL_COAL": CategoryCoal,
	"COAL":         CategoryCoal,
	"THERMAL_GAS":  CategoryGas,
	"GAS":          CategoryGas,
	"SOLAR":        CategorySolar,
	"HYDRO":        CategoryHydro,
	"WIND":         CategoryWind,
	"NUCLEAR":      CategoryNuclear,
}

// ParseCategory resolves a case-insensitive category label. The short
// labels COAL and GAS are accepted for the thermal categories.
func ParseCategory(s string) (Category, error) {
	c, ok := categoryAliases[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, s)
	}
	return c, nil
}

// Valid reports whether c is one of the canonical categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryCoal, CategoryGas, CategorySolar, CategoryHydro, CategoryWind, CategoryNuclear:
		return true
	}
	return false
}

// IsSolar reports whether availability follows the daylight curve.
func (c Category) IsSolar() bool { return c == CategorySolar }

func (c Category) String() string { return string(c) }

// UnmarshalText lets categories be decoded from configuration files.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
