package db

import (
	"github.com/ustaad-pk/ustaad_be/internal/models"
	"github.com/ustaad-pk/ustaad_be/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seedCategory struct {
	Name        string
	Slug        string
	Icon        string
	Description string
	Skills      []string
}

var catalog = []seedCategory{
	{"Plumbing", "plumbing", "🔧", "Pipe fitting, leak repair and bathroom installations",
		[]string{"Pipe Installation", "Leak Repair", "Water Heater Installation", "Bathroom Fitting", "Drain Cleaning", "Faucet Repair"}},
	{"Carpentry", "carpentry", "🪚", "Furniture making, repair and woodwork",
		[]string{"Furniture Making", "Door Installation", "Cabinet Making", "Wood Polishing", "Furniture Repair", "Kitchen Cabinets"}},
	{"Electrician", "electrician", "⚡", "Wiring, fittings and electrical repairs",
		[]string{"House Wiring", "Fan Installation", "Light Fitting", "UPS Installation", "Solar Panel Installation", "Circuit Breaker Repair"}},
	{"Painting", "painting", "🎨", "Interior and exterior painting services",
		[]string{"Interior Painting", "Exterior Painting", "Wall Putty", "Wood Polish", "Texture Painting", "Waterproofing"}},
	{"AC & Refrigeration", "ac-refrigeration", "❄️", "AC installation, servicing and fridge repair",
		[]string{"AC Installation", "AC Repair & Maintenance", "Gas Refilling", "Fridge Repair", "Deep Freezer Repair", "Split AC Servicing"}},
	{"Construction", "construction", "🏗️", "Masonry, tiling and building work",
		[]string{"Masonry", "Tile Fixing", "Plastering", "Renovation", "Roofing", "Concrete Work"}},
	{"Cleaning", "cleaning", "🧹", "Home, office and deep cleaning services",
		[]string{"Home Cleaning", "Office Cleaning", "Sofa Cleaning", "Carpet Cleaning", "Water Tank Cleaning", "Kitchen Deep Cleaning"}},
	{"Gardening", "gardening", "🌱", "Lawn care, planting and landscaping",
		[]string{"Lawn Mowing", "Tree Trimming", "Landscaping", "Plant Care", "Garden Design", "Irrigation Setup"}},
	{"Tailoring", "tailoring", "✂️", "Stitching, alterations and custom clothing",
		[]string{"Gents Tailoring", "Ladies Tailoring", "Alterations", "Embroidery", "Bridal Wear", "Curtain Stitching"}},
	{"Auto Mechanic", "auto-mechanic", "🔩", "Car and motorcycle repair and servicing",
		[]string{"Engine Repair", "Car Servicing", "Denting & Painting", "Auto Electrician", "Bike Repair", "Brake Repair"}},
	{"Welding", "welding", "🔥", "Gates, grills and metal fabrication",
		[]string{"Gate Fabrication", "Window Grills", "Steel Structures", "Arc Welding", "Metal Repair", "Railing Installation"}},
	{"Home Appliances", "home-appliances", "🔌", "Washing machine, microwave and appliance repair",
		[]string{"Washing Machine Repair", "Microwave Repair", "Geyser Repair", "Water Dispenser Repair", "Iron Repair", "Water Pump Repair"}},
}

// SeedCatalog upserts the built-in categories and their skills by slug.
// Running it again leaves job counts untouched.
func SeedCatalog(gdb *gorm.DB) error {
	return gdb.Transaction(func(tx *gorm.DB) error {
		for _, sc := range catalog {
			cat := models.Category{Name: sc.Name, Slug: sc.Slug, Icon: sc.Icon, Description: sc.Description}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "icon", "description"}),
			}).Create(&cat).Error; err != nil {
				return err
			}
			var saved models.Category
			if err := tx.Where("slug = ?", sc.Slug).First(&saved).Error; err != nil {
				return err
			}

			for _, name := range sc.Skills {
				skill := models.Skill{Name: name, Slug: utils.Slugify(name), CategoryID: &saved.ID}
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "slug"}},
					DoUpdates: clause.AssignmentColumns([]string{"name", "category_id"}),
				}).Create(&skill).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
