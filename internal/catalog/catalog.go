// Package catalog reads the seed item list used to initialise a database.
package catalog

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/labstock/internal/model"
)

// Entry is one item in a catalog file. Minimum is free text such as
// "6 bottles"; its leading number becomes the status threshold.
type Entry struct {
	StockPlace string `yaml:"stock_place" validate:"required"`
	Item       string `yaml:"item" validate:"required"`
	Minimum    string `yaml:"minimum"`
	Category   string `yaml:"category"`
}

// File is the catalog file layout.
type File struct {
	Items []Entry `yaml:"items" validate:"required,min=1,dive"`
}

var validate = validator.New()

// Load reads and validates a catalog file.
func Load(path string) ([]model.Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes catalog YAML into items. Sort order follows file order.
func Parse(data []byte) ([]model.Item, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	if err := validate.Struct(&f); err != nil {
		return nil, fmt.Errorf("catalog validation failed: %w", err)
	}

	seen := make(map[string]bool, len(f.Items))
	items := make([]model.Item, 0, len(f.Items))
	for i, e := range f.Items {
		key := e.StockPlace + "\x00" + e.Item
		if seen[key] {
			return nil, fmt.Errorf("items[%d]: duplicate item %q in %q", i, e.Item, e.StockPlace)
		}
		seen[key] = true

		value, unit := model.ParseMinimum(e.Minimum)
		items = append(items, model.Item{
			StockPlace: e.StockPlace,
			ItemName:   e.Item,
			Minimum:    e.Minimum,
			MinValue:   value,
			MinUnit:    unit,
			Category:   e.Category,
			SortOrder:  i + 1,
		})
	}
	return items, nil
}
