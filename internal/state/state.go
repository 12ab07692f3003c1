// Package state holds the canonical filter state for a browsing session and
// the single transition function every user intent goes through.
package state

// FilterState is the complete query intent. SelectedCountry/SelectedCity are
// the map-derived selection and may differ from the typed Country/City fields
// until reconciled; the typed fields are authoritative for query building.
type FilterState struct {
	Query           string `json:"query"`
	Country         string `json:"country"`
	City            string `json:"city"`
	Camera          string `json:"camera"`
	MediaType       string `json:"media_type"`
	DateFrom        string `json:"date_from"` // YYYY-MM-DD
	DateTo          string `json:"date_to"`   // YYYY-MM-DD
	SelectedCountry string `json:"selected_country"`
	SelectedCity    string `json:"selected_city"`
	Page            int    `json:"page"`
}

// Kind enumerates the intents a presenter can emit.
type Kind string

const (
	KindSetField Kind = "set_field"
	KindMapClick Kind = "map_click"
	KindClearMap Kind = "clear_map"
	KindReset    Kind = "reset"
	KindPrevPage Kind = "prev_page"
	KindNextPage Kind = "next_page"
	KindSearch   Kind = "search"
)

// Fields settable through KindSetField.
const (
	FieldQuery     = "query"
	FieldCountry   = "country"
	FieldCity      = "city"
	FieldCamera    = "camera"
	FieldMediaType = "media_type"
	FieldDateFrom  = "date_from"
	FieldDateTo    = "date_to"
)

// Intent is one user interaction. For KindMapClick the caller resolves the
// click first and passes the outcome in ResolvedCountry/ResolvedCity.
type Intent struct {
	Kind            Kind   `json:"kind"`
	Field           string `json:"field,omitempty"`
	Value           string `json:"value,omitempty"`
	ResolvedCountry string `json:"-"`
	ResolvedCity    string `json:"-"`
}

// Apply is the transition function: total over every intent, returns the new
// state by value so a state is never observable half-updated.
func Apply(s FilterState, in Intent) FilterState {
	switch in.Kind {
	case KindSetField:
		switch in.Field {
		case FieldQuery:
			s.Query = in.Value
		case FieldCountry:
			s.Country = in.Value
		case FieldCity:
			s.City = in.Value
		case FieldCamera:
			s.Camera = in.Value
		case FieldMediaType:
			s.MediaType = in.Value
		case FieldDateFrom:
			s.DateFrom = in.Value
		case FieldDateTo:
			s.DateTo = in.Value
		}
	case KindMapClick:
		s.SelectedCountry = in.ResolvedCountry
		s.SelectedCity = in.ResolvedCity
		// mirror the selection into the typed fields
		s.Country = in.ResolvedCountry
		s.City = in.ResolvedCity
		s.Page = 0
	case KindClearMap:
		s.SelectedCountry = ""
		s.SelectedCity = ""
		s.Country = ""
		s.City = ""
		s.Page = 0
	case KindReset:
		s = FilterState{}
	case KindPrevPage:
		if s.Page > 0 {
			s.Page--
		}
	case KindNextPage:
		s.Page++
	case KindSearch:
		s.Page = 0
	}
	return s
}

// Reconcile applies the snapshot-restore rule: typed field values present in
// a restored snapshot take precedence over the map selection when they
// disagree, and a selection missing its mirror adopts the typed value.
func Reconcile(s FilterState) FilterState {
	if s.SelectedCountry == "" && s.Country != "" {
		s.SelectedCountry = s.Country
	}
	if s.SelectedCity == "" && s.City != "" {
		s.SelectedCity = s.City
	}
	return s
}
