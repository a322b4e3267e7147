package model

// Species is a reference-table row: a tree species and the wood density the
// carbon estimator uses for it.
type Species struct {
	ScientificName string  `json:"scientific_name"`
	LocalName      string  `json:"local_name"`
	WoodDensity    float64 `json:"wood_density"` // g/cm3, positive
	Benefits       string  `json:"benefits"`
}

// DefaultSpecies returns the rows seeded when the reference table is empty.
func DefaultSpecies() []Species {
	return []Species{
		{"Acacia spp.", "Acacia", 0.65, "Drought-resistant, nitrogen-fixing, provides shade"},
		{"Eucalyptus spp.", "Eucalyptus", 0.55, "Fast-growing, timber production, medicinal uses"},
		{"Mangifera indica", "Mango", 0.50, "Fruit production, shade tree, ornamental"},
		{"Azadirachta indica", "Neem", 0.60, "Medicinal properties, insect repellent, drought-resistant"},
		{"Quercus spp.", "Oak", 0.75, "Long-term carbon storage, wildlife habitat, durable wood"},
		{"Pinus spp.", "Pine", 0.45, "Reforestation, timber production, resin production"},
	}
}
