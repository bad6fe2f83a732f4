package knowledge

import "github.com/sandevgo/aquabot/internal/core"

var defaultEntries = []core.KnowledgeEntry{
	{
		Keyword: "benefits",
		Answer:  "Benefits of rainwater harvesting include reducing water bills, lessening demand on groundwater, preventing soil erosion and flooding, and providing a source of clean, soft water for plants and laundry.",
	},
	{
		Keyword: "methods",
		Answer:  "Common methods include rooftop harvesting using gutters and downspouts connected to storage tanks (like barrels or cisterns), and surface runoff harvesting using swales or ponds to capture water in a landscape.",
	},
	{
		Keyword: "start",
		Answer:  "To start, assess your roof area and average local rainfall to estimate potential collection. Then, install gutters and a filtration system (like a leaf screen) leading to a food-grade storage container. Ensure the tank has an overflow pipe.",
	},
	{
		Keyword: "uses",
		Answer:  "Harvested rainwater is excellent for watering gardens, washing cars, and flushing toilets. With proper purification, it can also be made potable for drinking and cooking.",
	},
	{
		Keyword: "cost",
		Answer:  "The cost varies widely. A simple rain barrel setup can be under $100. A more extensive system with large cisterns and pumps can cost several thousand dollars. Government rebates or incentives may be available in your area.",
	},
}

// Default returns the built-in rainwater harvesting table.
func Default() *Table {
	t, err := New(defaultEntries)
	if err != nil {
		panic("knowledge: invalid default table: " + err.Error())
	}
	return t
}
