package models

// Settings is the single global configuration record shared by the console.
// It lives in one row keyed "global_config"; concurrent writers are
// last-write-wins by backend policy.
type Settings struct {
	LogoData    *string `json:"logoData"` // base64 image payload, nil when unset
	LogoSize    float64 `json:"logoSize"` // display scale multiplier
	NotifyPhone string  `json:"notifyPhone"`
	UpdatedAt   string  `json:"updatedAt"`
}

// UpdateSettingsRequest carries a settings write. Upserted on conflict.
type UpdateSettingsRequest struct {
	LogoData    *string  `json:"logoData,omitempty"`
	LogoSize    *float64 `json:"logoSize,omitempty"`
	NotifyPhone *string  `json:"notifyPhone,omitempty"`
}

// Validate bounds the logo scale to something printable.
func (r *UpdateSettingsRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.LogoSize != nil && (*r.LogoSize < 0.25 || *r.LogoSize > 4) {
		errors["logoSize"] = "Logo size must be between 0.25 and 4"
	}
	return errors
}

// SettingsUpdate is the push payload delivered to subscribers when the
// settings row changes. Applied idempotently: last received wins.
type SettingsUpdate struct {
	EventID  string  `json:"eventId"`
	LogoData *string `json:"logoData"`
	LogoSize float64 `json:"logoSize"`
}
