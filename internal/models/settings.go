package models

const (
	DefaultCurrency         = "USD"
	DefaultTheme            = "dark"
	DefaultCategory         = "Uncategorized"
	DefaultWarningThreshold = 80
	DefaultTimezone         = "UTC"
)

// BuiltinCategories is the category list a fresh user starts with.
var BuiltinCategories = []string{
	"Groceries",
	"Restaurants",
	"Bills",
	"Medicine",
	"Transportation",
	"Entertainment",
	"Shopping",
	"Other",
}

type Settings struct {
	Currency         string `firestore:"currency" json:"currency"`
	Theme            string `firestore:"theme" json:"theme"`
	DefaultCategory  string `firestore:"defaultCategory" json:"defaultCategory"`
	Notifications    bool   `firestore:"notifications" json:"notifications"`
	WarningThreshold int    `firestore:"warningThreshold" json:"warningThreshold"`
	Timezone         string `firestore:"timezone" json:"timezone"`
}

func DefaultSettings() Settings {
	return Settings{
		Currency:         DefaultCurrency,
		Theme:            DefaultTheme,
		DefaultCategory:  DefaultCategory,
		Notifications:    true,
		WarningThreshold: DefaultWarningThreshold,
		Timezone:         DefaultTimezone,
	}
}

// SettingsPatch carries only the fields being changed. Nil fields are kept.
type SettingsPatch struct {
	Currency         *string `json:"currency,omitempty"`
	Theme            *string `json:"theme,omitempty"`
	DefaultCategory  *string `json:"defaultCategory,omitempty"`
	Notifications    *bool   `json:"notifications,omitempty"`
	WarningThreshold *int    `json:"warningThreshold,omitempty"`
	Timezone         *string `json:"timezone,omitempty"`
}

// Apply shallow-merges the patch over s and returns the result.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.DefaultCategory != nil {
		s.DefaultCategory = *p.DefaultCategory
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.WarningThreshold != nil {
		s.WarningThreshold = *p.WarningThreshold
	}
	if p.Timezone != nil {
		s.Timezone = *p.Timezone
	}
	return s
}

// Fields returns the Firestore field map of the set fields, for merge writes.
func (p SettingsPatch) Fields() map[string]any {
	out := map[string]any{}
	if p.Currency != nil {
		out["currency"] = *p.Currency
	}
	if p.Theme != nil {
		out["theme"] = *p.Theme
	}
	if p.DefaultCategory != nil {
		out["defaultCategory"] = *p.DefaultCategory
	}
	if p.Notifications != nil {
		out["notifications"] = *p.Notifications
	}
	if p.WarningThreshold != nil {
		out["warningThreshold"] = *p.WarningThreshold
	}
	if p.Timezone != nil {
		out["timezone"] = *p.Timezone
	}
	return out
}

// PatchFrom builds a patch that sets every field of s.
func PatchFrom(s Settings) SettingsPatch {
	return SettingsPatch{
		Currency:         &s.Currency,
		Theme:            &s.Theme,
		DefaultCategory:  &s.DefaultCategory,
		Notifications:    &s.Notifications,
		WarningThreshold: &s.WarningThreshold,
		Timezone:         &s.Timezone,
	}
}
