// models/milestone.go
package models

// MilestoneTier maps an absolute level to a one-time reward. Tiers live in
// the database so operators can add levels without a code change; the rows
// below are only the idempotent seed.
type MilestoneTier struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Level    int    `gorm:"uniqueIndex;not null" json:"level"`
	Currency int64  `gorm:"not null" json:"currency"`
	Title    string `json:"title,omitempty"` // empty = currency-only tier

	Timestamps
}

// DefaultMilestoneTiers seeds the launch reward table.
var DefaultMilestoneTiers = []MilestoneTier{
	{Level: 5, Currency: 100, Title: "Street Poet"},
	{Level: 10, Currency: 250, Title: "Rising Star"},
	{Level: 20, Currency: 500, Title: "Verse Veteran"},
	{Level: 50, Currency: 1000},
	{Level: 100, Currency: 5000, Title: "Rap Legend"},
}
