package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
)

const (
	categoryKitchen   = "Kitchen appliances"
	categoryCleaning  = "Cleaning devices"
	categoryClimate   = "Heating and cooling devices"
	categoryPersonal  = "Personal care devices"
	categorySmartHome = "Smart home devices"
)

// DefaultCatalogSeed is the appliance range the shop opens with.
func DefaultCatalogSeed() []CatalogSeedItem {
	return []CatalogSeedItem{
		{Name: "Mixer", Price: 450000, Category: categoryKitchen},
		{Name: "Oven", Price: 2500000, Category: categoryKitchen},
		{Name: "Blender", Price: 350000, Category: categoryKitchen},
		{Name: "Microwave", Price: 800000, Category: categoryKitchen},
		{Name: "Refrigerator", Price: 3500000, Category: categoryKitchen},
		{Name: "Vacuum Cleaner", Price: 1200000, Category: categoryCleaning},
		{Name: "Robot Vacuum", Price: 2800000, Category: categoryCleaning},
		{Name: "Air Conditioner", Price: 4500000, Category: categoryClimate},
		{Name: "Heater", Price: 650000, Category: categoryClimate},
		{Name: "Fan", Price: 280000, Category: categoryClimate},
		{Name: "Hair Dryer", Price: 180000, Category: categoryPersonal},
		{Name: "Electric Shaver", Price: 320000, Category: categoryPersonal},
		{Name: "Smart Speaker", Price: 550000, Category: categorySmartHome},
		{Name: "Smart Doorbell", Price: 780000, Category: categorySmartHome},
		{Name: "Smart Thermostat", Price: 920000, Category: categorySmartHome},
	}
}

type catalogSeedFile struct {
	Products []CatalogSeedItem `yaml:"products"`
}

// ParseCatalogSeed decodes a YAML document with a top-level products list.
func ParseCatalogSeed(data []byte) ([]CatalogSeedItem, error) {
	var file catalogSeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: decode catalog seed: %v", ErrCatalogInvalidInput, err)
	}
	if len(file.Products) == 0 {
		return nil, fmt.Errorf("%w: catalog seed has no products", ErrCatalogInvalidInput)
	}
	for i := range file.Products {
		if file.Products[i].Status == "" {
			file.Products[i].Status = domain.ProductStatusAvailable
		}
	}
	return file.Products, nil
}

// LoadCatalogSeed reads the seed file at path, or returns the built-in range when path is empty.
func LoadCatalogSeed(path string) ([]CatalogSeedItem, error) {
	if path == "" {
		return DefaultCatalogSeed(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog seed: read %s: %w", path, err)
	}
	return ParseCatalogSeed(data)
}
